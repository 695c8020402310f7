package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"surveysync/internal/domain/survey"
)

type fakeCache struct {
	blobs map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{blobs: map[string][]byte{}}
}

func (c *fakeCache) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.blobs[key] = raw
	return nil
}

func (c *fakeCache) Load(key string, out any) (bool, error) {
	raw, ok := c.blobs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

type fakeCleaner struct {
	deleted []string
}

func (c *fakeCleaner) Delete(surveyID string) error {
	c.deleted = append(c.deleted, surveyID)
	return nil
}

// fakeCollector accepts every survey except the ones listed in fail.
type fakeCollector struct {
	received []AddSurveyRequest
	fail     map[string]error
	ids      []string
}

func (f *fakeCollector) AddSurvey(_ context.Context, req AddSurveyRequest) error {
	var details struct {
		LocalID string `json:"localId"`
	}
	_ = json.Unmarshal(req.SurveyDetails, &details)
	if err, ok := f.fail[details.LocalID]; ok {
		return err
	}
	f.received = append(f.received, req)
	f.ids = append(f.ids, details.LocalID)
	return nil
}

func newTestEngine(t *testing.T) (*SyncEngine, *survey.Repository, *fakeCollector, *fakeCleaner) {
	t.Helper()

	cache := newFakeCache()
	cleaner := &fakeCleaner{}
	collector := &fakeCollector{fail: map[string]error{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := survey.NewRepository(cache, cleaner, log)
	now := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	engine := NewSyncEngine(repo, collector, cache, log,
		WithEngineClock(func() time.Time { return now }))

	return engine, repo, collector, cleaner
}

func addSurvey(t *testing.T, repo *survey.Repository, typ survey.Type, status survey.Status) string {
	t.Helper()

	s := &survey.LocalSurvey{SurveyType: typ, Data: survey.Data{
		PropertyDetails: json.RawMessage(`{"propertyType":"House"}`),
		OwnerDetails:    json.RawMessage(`{"ownerName":"S. Kumar"}`),
		LocationDetails: json.RawMessage(`{"ward":"12"}`),
		OtherDetails:    json.RawMessage(`{}`),
	}}
	require.NoError(t, repo.Save(s))

	// The survey's local id rides inside surveyDetails so the fake
	// collector can tell uploads apart.
	s.Data.SurveyDetails = json.RawMessage(`{"localId":"` + s.ID + `"}`)
	require.NoError(t, repo.Update(s.ID, s))

	if status == survey.StatusSubmitted {
		require.NoError(t, repo.MarkSubmitted(s.ID))
	}
	return s.ID
}

func TestSyncAllDeletesAcceptedSurveys(t *testing.T) {
	engine, repo, collector, cleaner := newTestEngine(t)

	id := addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)

	result, err := engine.SyncAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{SuccessCount: 1, FailedCount: 0}, result)

	_, err = repo.GetByID(id)
	assert.ErrorIs(t, err, survey.ErrNotFound)
	assert.Equal(t, []string{id}, cleaner.deleted)
	assert.Equal(t, []string{id}, collector.ids)
}

func TestSyncAllSkipsIncomplete(t *testing.T) {
	engine, repo, collector, _ := newTestEngine(t)

	incomplete := addSurvey(t, repo, survey.TypeResidential, survey.StatusIncomplete)
	submitted := addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)

	result, err := engine.SyncAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{SuccessCount: 1, FailedCount: 0}, result)
	assert.Equal(t, []string{submitted}, collector.ids)

	// The incomplete survey is untouched.
	got, err := repo.GetByID(incomplete)
	require.NoError(t, err)
	assert.Equal(t, survey.StatusIncomplete, got.Status)
}

func TestSyncAllBatchAccounting(t *testing.T) {
	engine, repo, collector, _ := newTestEngine(t)

	id1 := addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)
	id2 := addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)
	id3 := addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)

	collector.fail[id2] = errors.New("502 bad gateway")

	result, err := engine.SyncAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{SuccessCount: 2, FailedCount: 1}, result)

	// The failed survey stays, still submitted and unsynced.
	got, err := repo.GetByID(id2)
	require.NoError(t, err)
	assert.Equal(t, survey.StatusSubmitted, got.Status)
	assert.False(t, got.Synced)

	for _, id := range []string{id1, id3} {
		_, err := repo.GetByID(id)
		assert.ErrorIs(t, err, survey.ErrNotFound)
	}

	// A later run retries only the failure.
	delete(collector.fail, id2)
	result, err = engine.SyncAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{SuccessCount: 1, FailedCount: 0}, result)
	assert.Empty(t, repo.GetAll())
}

func TestSyncedLogDedup(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	engine.recordSynced("survey_1_ab", 7)
	engine.recordSynced("survey_1_ab", 7)
	engine.recordSynced("survey_1_ab", 8)

	entries := engine.SyncedLog()
	require.Len(t, entries, 2)
	assert.Equal(t, "survey_1_ab", entries[0].ID)
	assert.Equal(t, 7, entries[0].UserID)
	assert.Equal(t, 8, entries[1].UserID)
}

func TestBuildPayloadTrimsByType(t *testing.T) {
	floors := func(ids ...string) []survey.FloorAssessment {
		var out []survey.FloorAssessment
		for _, id := range ids {
			out = append(out, survey.FloorAssessment{ID: id})
		}
		return out
	}

	s := &survey.LocalSurvey{
		ID:         "survey_1_ab",
		SurveyType: survey.TypeResidential,
		Data: survey.Data{
			SurveyDetails:                     json.RawMessage(`{}`),
			ResidentialPropertyAssessments:    floors("floor_1_aa"),
			NonResidentialPropertyAssessments: floors("floor_2_bb"),
		},
	}

	payload := buildPayload(s)
	assert.Len(t, payload.ResidentialPropertyAssessments, 1)
	assert.Nil(t, payload.NonResidentialPropertyAssessments)

	// The stored object is never mutated by payload shaping.
	assert.Len(t, s.Data.NonResidentialPropertyAssessments, 1)

	s.SurveyType = survey.TypeNonResidential
	payload = buildPayload(s)
	assert.Nil(t, payload.ResidentialPropertyAssessments)
	assert.Len(t, payload.NonResidentialPropertyAssessments, 1)

	s.SurveyType = survey.TypeMixed
	payload = buildPayload(s)
	assert.Len(t, payload.ResidentialPropertyAssessments, 1)
	assert.Len(t, payload.NonResidentialPropertyAssessments, 1)
}

func TestSyncAllRespectsCancellation(t *testing.T) {
	engine, repo, _, _ := newTestEngine(t)

	addSurvey(t, repo, survey.TypeResidential, survey.StatusSubmitted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.SyncAll(ctx, 7)
	assert.Error(t, err)
	assert.Zero(t, result.SuccessCount)
	assert.Len(t, repo.GetAll(), 1)
}
