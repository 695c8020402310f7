package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"surveysync/internal/domain/survey"
)

const syncedLogKey = "syncedSurveysLog"

// Collector is the remote endpoint surveys are uploaded to.
type Collector interface {
	AddSurvey(ctx context.Context, req AddSurveyRequest) error
}

// SyncResult is the aggregate outcome of one SyncAll run.
type SyncResult struct {
	SuccessCount int `json:"successCount"`
	FailedCount  int `json:"failedCount"`
}

// SyncedEntry is one line of the synced-surveys audit log.
type SyncedEntry struct {
	ID       string    `json:"id"`
	UserID   int       `json:"userId"`
	SyncedAt time.Time `json:"syncedAt"`
}

// SyncEngine walks the repository for submitted surveys and uploads
// them one at a time. A confirmed acceptance deletes the local survey
// and its images; any failure leaves the record untouched for the
// next user-initiated run. There is no scheduled retry.
type SyncEngine struct {
	repo      *survey.Repository
	collector Collector
	kv        survey.Cache
	log       *slog.Logger
	mu        sync.Mutex
	isSyncing bool
	now       func() time.Time
}

// EngineOption configures a SyncEngine.
type EngineOption func(*SyncEngine)

// WithEngineClock injects the time source, used by tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *SyncEngine) { e.now = now }
}

func NewSyncEngine(repo *survey.Repository, collector Collector, kv survey.Cache, log *slog.Logger, opts ...EngineOption) *SyncEngine {
	e := &SyncEngine{
		repo:      repo,
		collector: collector,
		kv:        kv,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pending returns the surveys currently eligible for upload.
func (e *SyncEngine) Pending() []survey.LocalSurvey {
	var pending []survey.LocalSurvey
	for _, s := range e.repo.GetAll() {
		if s.Status == survey.StatusSubmitted {
			pending = append(pending, s)
		}
	}
	return pending
}

// SyncAll uploads every submitted survey sequentially and returns the
// aggregate counts. One failed upload never aborts the batch, and
// incomplete surveys are never considered.
func (e *SyncEngine) SyncAll(ctx context.Context, userID int) (SyncResult, error) {
	e.mu.Lock()
	if e.isSyncing {
		e.mu.Unlock()
		return SyncResult{}, fmt.Errorf("sync already running")
	}
	e.isSyncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.isSyncing = false
		e.mu.Unlock()
	}()

	pending := e.Pending()
	e.log.Info("sync started", "pending", len(pending))

	var result SyncResult
	for _, s := range pending {
		if err := ctx.Err(); err != nil {
			result.FailedCount += len(pending) - result.SuccessCount - result.FailedCount
			return result, err
		}

		if err := e.collector.AddSurvey(ctx, buildPayload(&s)); err != nil {
			// Retryable regardless of cause; the record stays put.
			e.log.Warn("survey upload failed", "survey_id", s.ID, "error", err)
			result.FailedCount++
			continue
		}

		if err := e.repo.Remove(s.ID); err != nil {
			e.log.Error("synced survey not removed locally", "survey_id", s.ID, "error", err)
		}
		e.recordSynced(s.ID, userID)
		result.SuccessCount++
	}

	e.log.Info("sync finished",
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// IsSyncing reports whether a run is in progress.
func (e *SyncEngine) IsSyncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isSyncing
}

// SyncedLog returns the audit log of accepted surveys.
func (e *SyncEngine) SyncedLog() []SyncedEntry {
	var entries []SyncedEntry
	found, err := e.kv.Load(syncedLogKey, &entries)
	if err != nil || !found {
		return nil
	}
	return entries
}

// recordSynced appends to the audit log, ignoring a (survey, user)
// pair that is already present.
func (e *SyncEngine) recordSynced(surveyID string, userID int) {
	entries := e.SyncedLog()
	for _, entry := range entries {
		if entry.ID == surveyID && entry.UserID == userID {
			return
		}
	}

	entries = append(entries, SyncedEntry{
		ID:       surveyID,
		UserID:   userID,
		SyncedAt: e.now().UTC(),
	})
	if err := e.kv.Save(syncedLogKey, entries); err != nil {
		e.log.Warn("synced-surveys log not updated", "survey_id", surveyID, "error", err)
	}
}

// buildPayload deep-copies the survey data and strips the floor
// sequence that does not apply to the survey's type. The stored
// object is never touched.
func buildPayload(s *survey.LocalSurvey) AddSurveyRequest {
	data := s.Data.Clone()

	switch s.SurveyType {
	case survey.TypeResidential:
		data.NonResidentialPropertyAssessments = nil
	case survey.TypeNonResidential:
		data.ResidentialPropertyAssessments = nil
	}

	return AddSurveyRequest{
		SurveyType:                        s.SurveyType,
		SurveyDetails:                     data.SurveyDetails,
		PropertyDetails:                   data.PropertyDetails,
		OwnerDetails:                      data.OwnerDetails,
		LocationDetails:                   data.LocationDetails,
		OtherDetails:                      data.OtherDetails,
		ResidentialPropertyAssessments:    data.ResidentialPropertyAssessments,
		NonResidentialPropertyAssessments: data.NonResidentialPropertyAssessments,
	}
}
