package masterdata

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
)

const (
	bundleKey      = "masterData"
	assignmentsKey = "userAssignments"
	primaryKey     = "primaryAssignment"
)

var ErrUnknownAssignment = errors.New("assignment not in cached list")

// KV is the compressed key-value store the cache persists through.
type KV interface {
	Save(key string, value any) error
	Load(key string, out any) (bool, error)
}

// Fetcher pulls the reference bundles from the collector server.
type Fetcher interface {
	MasterData(ctx context.Context) (*Bundle, error)
	MyAssignments(ctx context.Context) ([]Assignment, error)
}

// Cache is the read-through store for lookup tables and the
// surveyor's assignments. Reads never fail: an empty cache yields
// zero values and the forms render empty dropdowns.
type Cache struct {
	kv      KV
	fetcher Fetcher
	log     *slog.Logger
}

func NewCache(kv KV, fetcher Fetcher, log *slog.Logger) *Cache {
	return &Cache{
		kv:      kv,
		fetcher: fetcher,
		log:     log,
	}
}

// Refresh fetches the lookup bundle and assignment list and
// overwrites both cached blobs. Requires connectivity.
func (c *Cache) Refresh(ctx context.Context) error {
	bundle, err := c.fetcher.MasterData(ctx)
	if err != nil {
		return fmt.Errorf("fetch master data: %w", err)
	}
	if err := c.kv.Save(bundleKey, bundle); err != nil {
		return fmt.Errorf("cache master data: %w", err)
	}

	assignments, err := c.fetcher.MyAssignments(ctx)
	if err != nil {
		return fmt.Errorf("fetch assignments: %w", err)
	}
	if err := c.kv.Save(assignmentsKey, assignments); err != nil {
		return fmt.Errorf("cache assignments: %w", err)
	}

	c.log.Info("reference data refreshed",
		"assignments", len(assignments),
		"property_types", len(bundle.PropertyTypes),
	)
	return nil
}

// Bundle returns the cached lookup tables, or nil when never fetched.
func (c *Cache) Bundle() *Bundle {
	var bundle Bundle
	found, err := c.kv.Load(bundleKey, &bundle)
	if err != nil || !found {
		return nil
	}
	return &bundle
}

// Assignments returns the cached assignment list, empty when absent.
func (c *Cache) Assignments() []Assignment {
	var assignments []Assignment
	found, err := c.kv.Load(assignmentsKey, &assignments)
	if err != nil || !found {
		return nil
	}
	return assignments
}

// SetPrimary points the primary-assignment entry at one of the cached
// assignments.
func (c *Cache) SetPrimary(id int) error {
	for _, a := range c.Assignments() {
		if a.ID == id {
			if err := c.kv.Save(primaryKey, a); err != nil {
				return fmt.Errorf("cache primary assignment: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownAssignment, id)
}

// Primary returns the selected assignment, or nil when none is set.
func (c *Cache) Primary() *Assignment {
	var a Assignment
	found, err := c.kv.Load(primaryKey, &a)
	if err != nil || !found {
		return nil
	}
	return &a
}
