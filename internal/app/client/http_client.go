package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/exp/slog"

	"surveysync/internal/app/client/config"
	"surveysync/internal/domain/masterdata"
	"surveysync/internal/domain/survey"
	"surveysync/internal/domain/user"
)

// AddSurveyRequest is the body of POST /surveys/addSurvey: the five
// form sections flattened alongside the survey type, plus whichever
// floor sequences apply to that type.
type AddSurveyRequest struct {
	SurveyType      survey.Type     `json:"surveyType"`
	SurveyDetails   json.RawMessage `json:"surveyDetails"`
	PropertyDetails json.RawMessage `json:"propertyDetails"`
	OwnerDetails    json.RawMessage `json:"ownerDetails"`
	LocationDetails json.RawMessage `json:"locationDetails"`
	OtherDetails    json.RawMessage `json:"otherDetails"`

	ResidentialPropertyAssessments    []survey.FloorAssessment `json:"residentialPropertyAssessments,omitempty"`
	NonResidentialPropertyAssessments []survey.FloorAssessment `json:"nonResidentialPropertyAssessments,omitempty"`
}

type collectorClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func newCollectorClient(cfg *config.Config, log *slog.Logger) *collectorClient {
	client := &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	baseURL := cfg.ServerAddress
	if !strings.Contains(baseURL, "://") {
		baseURL = scheme + baseURL
	}

	return &collectorClient{
		client:    client,
		log:       log,
		baseURL:   baseURL,
		userAgent: "SurveySync-Client/1.0",
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *collectorClient) SetToken(token string) {
	c.token = token
}

// Health checks that the collector is reachable.
func (c *collectorClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

// Login exchanges credentials for a bearer token.
func (c *collectorClient) Login(ctx context.Context, username, password string) (*user.LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", user.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var loginResp user.LoginResponse
	if err := c.parseResponse(resp, &loginResp); err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrInvalidAuth, err)
	}
	return &loginResp, nil
}

// AddSurvey submits one survey to the collector. The endpoint is
// all-or-nothing per survey: any non-2xx leaves nothing half-created.
func (c *collectorClient) AddSurvey(ctx context.Context, req AddSurveyRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/surveys/addSurvey", req)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}

// MasterData fetches the full lookup-table bundle.
func (c *collectorClient) MasterData(ctx context.Context) (*masterdata.Bundle, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/master-data/all", nil)
	if err != nil {
		return nil, err
	}

	var bundle masterdata.Bundle
	if err := c.parseResponse(resp, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// MyAssignments fetches the surveyor's ward assignments.
func (c *collectorClient) MyAssignments(ctx context.Context) ([]masterdata.Assignment, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/surveyor/my-assignments", nil)
	if err != nil {
		return nil, err
	}

	var assignResp struct {
		Assignments []masterdata.Assignment `json:"assignments"`
	}
	if err := c.parseResponse(resp, &assignResp); err != nil {
		return nil, err
	}
	return assignResp.Assignments, nil
}

func (c *collectorClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug("collector request", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func (c *collectorClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("collector response", "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		// The collector answers either {message, errors?} or {error}.
		var errResp struct {
			Message string          `json:"message"`
			Errors  json.RawMessage `json:"errors"`
			Error   string          `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Message != "" && len(errResp.Errors) > 0:
				return fmt.Errorf("server error (%d): %s: %s", resp.StatusCode, errResp.Message, errResp.Errors)
			case errResp.Message != "":
				return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
			case errResp.Error != "":
				return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
			}
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
