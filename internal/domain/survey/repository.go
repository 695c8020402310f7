package survey

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// CollectionKey is the single blob the whole unsynced collection
// lives under.
const CollectionKey = "unsyncedSurveys"

// Cache is the compressed key-value store the repository persists
// through.
type Cache interface {
	Save(key string, value any) error
	Load(key string, out any) (bool, error)
}

// ImageCleaner removes a survey's photos; satisfied by the image file
// store.
type ImageCleaner interface {
	Delete(surveyID string) error
}

// Repository owns the unsynced-surveys collection. The collection is
// one blob, so every read-modify-write cycle runs under one mutex —
// the form-save flow and the sync flow would otherwise race and lose
// updates.
type Repository struct {
	mu     sync.Mutex
	cache  Cache
	images ImageCleaner
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(cache Cache, images ImageCleaner, log *slog.Logger, opts ...Option) *Repository {
	r := &Repository{
		cache:  cache,
		images: images,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save upserts the survey by ID. A survey without an ID gets one,
// with createdAt and status incomplete. On replace the stored status
// is preserved unless the caller supplied one.
func (r *Repository) Save(s *LocalSurvey) error {
	if s == nil {
		return fmt.Errorf("%w: nil survey", ErrInvalidInput)
	}
	if s.SurveyType != "" && !s.SurveyType.Valid() {
		return fmt.Errorf("%w: unknown survey type %q", ErrInvalidInput, s.SurveyType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()

	if s.ID == "" {
		s.ID = NewID()
		s.CreatedAt = r.now().UTC()
		if s.Status == "" {
			s.Status = StatusIncomplete
		}
		all = append(all, minimal(s))
		return r.persist(all)
	}

	for i := range all {
		if all[i].ID != s.ID {
			continue
		}
		if s.Status == "" {
			s.Status = all[i].Status
		}
		s.CreatedAt = all[i].CreatedAt
		s.SurveyType = all[i].SurveyType
		all[i] = minimal(s)
		return r.persist(all)
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}
	if s.Status == "" {
		s.Status = StatusIncomplete
	}
	all = append(all, minimal(s))
	return r.persist(all)
}

// GetAll returns the collection, empty when absent or corrupted.
func (r *Repository) GetAll() []LocalSurvey {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadAll()
}

// GetByID returns the survey or ErrNotFound.
func (r *Repository) GetByID(id string) (*LocalSurvey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.loadAll() {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Update fully replaces the record at id with newSurvey's fields.
func (r *Repository) Update(id string, newSurvey *LocalSurvey) error {
	if newSurvey == nil {
		return fmt.Errorf("%w: nil survey", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		replacement := *newSurvey
		replacement.ID = id
		if replacement.CreatedAt.IsZero() {
			replacement.CreatedAt = all[i].CreatedAt
		}
		if replacement.Status == "" {
			replacement.Status = all[i].Status
		}
		all[i] = minimal(&replacement)
		return r.persist(all)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// MarkSubmitted moves the survey to submitted. Already-submitted
// surveys stay submitted; there is no way back.
func (r *Repository) MarkSubmitted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i].Status = StatusSubmitted
		return r.persist(all)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Remove deletes the survey and its images. Image cleanup runs first:
// if a later step dies, re-running Remove still leaves no orphans.
// Removing an unknown id is a no-op.
func (r *Repository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.images.Delete(id); err != nil {
		return fmt.Errorf("remove images for %s: %w", id, err)
	}

	all := r.loadAll()
	kept := all[:0]
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return r.persist(kept)
}

// AddFloor appends a floor assessment to the survey's section,
// assigning the floor ID.
func (r *Repository) AddFloor(id string, section Section, floor FloorAssessment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		floor.ID = NewFloorID()
		all[i].Data.setFloors(section, append(all[i].Data.Floors(section), floor))
		if err := r.persist(all); err != nil {
			return "", err
		}
		return floor.ID, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

// UpdateFloor replaces the floor assessment in place.
func (r *Repository) UpdateFloor(id string, section Section, floor FloorAssessment) error {
	if floor.ID == "" {
		return fmt.Errorf("%w: missing floor id", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		floors := all[i].Data.Floors(section)
		for j := range floors {
			if floors[j].ID == floor.ID {
				floors[j] = floor
				return r.persist(all)
			}
		}
		return fmt.Errorf("%w: %s", ErrFloorNotFound, floor.ID)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// RemoveFloor deletes one floor assessment by ID.
func (r *Repository) RemoveFloor(id string, section Section, floorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.loadAll()
	for i := range all {
		if all[i].ID != id {
			continue
		}
		floors := all[i].Data.Floors(section)
		for j := range floors {
			if floors[j].ID == floorID {
				all[i].Data.setFloors(section, append(floors[:j:j], floors[j+1:]...))
				return r.persist(all)
			}
		}
		return fmt.Errorf("%w: %s", ErrFloorNotFound, floorID)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *Repository) loadAll() []LocalSurvey {
	var all []LocalSurvey
	found, err := r.cache.Load(CollectionKey, &all)
	if err != nil || !found {
		return nil
	}
	return all
}

func (r *Repository) persist(all []LocalSurvey) error {
	if all == nil {
		all = []LocalSurvey{}
	}
	if err := r.cache.Save(CollectionKey, all); err != nil {
		return fmt.Errorf("persist survey collection: %w", err)
	}
	return nil
}

// minimal narrows a survey to the persisted field set.
func minimal(s *LocalSurvey) LocalSurvey {
	return LocalSurvey{
		ID:         s.ID,
		SurveyType: s.SurveyType,
		Data:       s.Data,
		Status:     s.Status,
		Synced:     s.Synced,
		CreatedAt:  s.CreatedAt,
	}
}
