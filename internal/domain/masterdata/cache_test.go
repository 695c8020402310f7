package masterdata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type fakeKV struct {
	blobs map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{blobs: map[string][]byte{}}
}

func (c *fakeKV) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.blobs[key] = raw
	return nil
}

func (c *fakeKV) Load(key string, out any) (bool, error) {
	raw, ok := c.blobs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

type fakeFetcher struct {
	bundle      *Bundle
	assignments []Assignment
	err         error
}

func (f *fakeFetcher) MasterData(_ context.Context) (*Bundle, error) {
	return f.bundle, f.err
}

func (f *fakeFetcher) MyAssignments(_ context.Context) ([]Assignment, error) {
	return f.assignments, f.err
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		bundle: &Bundle{
			PropertyTypes: []Item{{ID: 1, Name: "House"}, {ID: 2, Name: "Flat"}},
			RoadTypes:     []Item{{ID: 1, Name: "Kuccha"}},
		},
		assignments: []Assignment{
			{
				ID:       10,
				ULB:      Item{ID: 1, Name: "Lucknow Nagar Nigam"},
				Zone:     Item{ID: 3, Name: "Zone 3"},
				Ward:     Item{ID: 12, Name: "Ward 12"},
				Mohallas: []Mohalla{{ID: 100, Name: "Aminabad"}},
			},
			{ID: 11, Ward: Item{ID: 14, Name: "Ward 14"}},
		},
	}
}

func newTestCache(t *testing.T) (*Cache, *fakeFetcher) {
	t.Helper()

	fetcher := testFetcher()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCache(newFakeKV(), fetcher, log), fetcher
}

func TestRefreshOverwritesWholesale(t *testing.T) {
	cache, fetcher := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))
	require.NotNil(t, cache.Bundle())
	assert.Len(t, cache.Bundle().PropertyTypes, 2)
	assert.Len(t, cache.Assignments(), 2)

	// A shrunken server response replaces the blob entirely.
	fetcher.bundle = &Bundle{PropertyTypes: []Item{{ID: 1, Name: "House"}}}
	fetcher.assignments = fetcher.assignments[:1]
	require.NoError(t, cache.Refresh(ctx))

	assert.Len(t, cache.Bundle().PropertyTypes, 1)
	assert.Empty(t, cache.Bundle().RoadTypes)
	assert.Len(t, cache.Assignments(), 1)
}

func TestReadsBeforeRefresh(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.Nil(t, cache.Bundle())
	assert.Empty(t, cache.Assignments())
	assert.Nil(t, cache.Primary())
}

func TestRefreshFailurePreservesCache(t *testing.T) {
	cache, fetcher := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))

	fetcher.err = errors.New("network unreachable")
	require.Error(t, cache.Refresh(ctx))

	// The old cache is still served.
	assert.NotNil(t, cache.Bundle())
	assert.Len(t, cache.Assignments(), 2)
}

func TestPrimaryAssignment(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Refresh(ctx))

	assert.ErrorIs(t, cache.SetPrimary(99), ErrUnknownAssignment)
	require.NoError(t, cache.SetPrimary(10))

	primary := cache.Primary()
	require.NotNil(t, primary)
	assert.Equal(t, "Ward 12", primary.Ward.Name)
	assert.Equal(t, "Lucknow Nagar Nigam", primary.ULB.Name)
}
