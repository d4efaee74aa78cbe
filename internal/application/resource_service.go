package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
)

// ResourceServiceOptions tunes the catalog cache and unlock hashing.
type ResourceServiceOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	Argon2    Argon2idParams
}

// ResourceService manages the catalog of bookable resources and answers
// restriction lookups.
type ResourceService struct {
	resources   persistence.ResourceRepository
	cache       *resourceCache
	argon2      Argon2idParams
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with default options.
func NewResourceService(resources persistence.ResourceRepository, idGenerator func() string, now func() time.Time) *ResourceService {
	return NewResourceServiceWithLogger(resources, ResourceServiceOptions{}, idGenerator, now, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a specified logger.
func NewResourceServiceWithLogger(resources persistence.ResourceRepository, opts ResourceServiceOptions, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	params := opts.Argon2
	if params == (Argon2idParams{}) {
		params = DefaultArgon2idParams
	}
	return &ResourceService{
		resources:   resources,
		cache:       newResourceCache(opts.CacheSize, opts.CacheTTL),
		argon2:      params,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and adds a resource to the catalog.
func (s *ResourceService) CreateResource(ctx context.Context, input ResourceInput) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	category, vErr := validateResourceInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Resource{
		ID:         s.idGenerator(),
		Name:       strings.TrimSpace(input.Name),
		Category:   string(category),
		Capacity:   input.Capacity,
		Location:   strings.TrimSpace(input.Location),
		Restricted: input.Restricted,
		CreatedAt:  s.now(),
	}
	record.UpdatedAt = record.CreatedAt

	if input.Restricted {
		record.UnlockHash, err = HashUnlockToken(input.UnlockToken, s.argon2)
		if err != nil {
			err = fmt.Errorf("hash unlock token: %w", err)
			return
		}
	}

	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}
	if err = s.resources.CreateResource(ctx, record); err != nil {
		err = mapResourceRepoError(err)
		return
	}

	s.cache.Store(record)
	resource = toResource(record)
	return
}

// GetResource returns a single resource.
func (s *ResourceService) GetResource(ctx context.Context, id booking.ResourceID) (Resource, error) {
	record, err := s.lookup(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	return toResource(record), nil
}

// ListResources returns the catalog ordered by name.
func (s *ResourceService) ListResources(ctx context.Context) (resources []Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListResources")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list resources", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(resources)).DebugContext(ctx, "resources listed")
	}()

	var records []persistence.Resource
	records, err = s.resources.ListResources(ctx)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}

	resources = make([]Resource, 0, len(records))
	for _, record := range records {
		s.cache.Store(record)
		resources = append(resources, toResource(record))
	}
	slices.SortFunc(resources, func(a, b Resource) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return
}

// IsRestricted reports whether the resource requires an unlock token.
func (s *ResourceService) IsRestricted(ctx context.Context, id booking.ResourceID) (bool, error) {
	record, err := s.lookup(ctx, id)
	if err != nil {
		return false, err
	}
	return record.Restricted, nil
}

// Unlock verifies token against a restricted resource. Unrestricted
// resources unlock with any token.
func (s *ResourceService) Unlock(ctx context.Context, id booking.ResourceID, token string) (err error) {
	logger := s.loggerWith(ctx, "Unlock", "resource_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "unlock rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "resource unlocked")
	}()

	var record persistence.Resource
	record, err = s.lookup(ctx, id)
	if err != nil {
		return
	}
	if !record.Restricted {
		return nil
	}
	if err = VerifyUnlockToken(record.UnlockHash, token); err != nil {
		if !errors.Is(err, ErrInvalidUnlockToken) {
			err = fmt.Errorf("%w: %w", ErrInvalidUnlockToken, err)
		}
		return
	}
	return nil
}

// Categories resolves the category of each resource, as consumed by
// SubmitParams.Categories.
func (s *ResourceService) Categories(ctx context.Context, ids []booking.ResourceID) (map[booking.ResourceID]booking.Category, error) {
	out := make(map[booking.ResourceID]booking.Category, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		record, err := s.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = booking.Category(record.Category)
	}
	return out, nil
}

func (s *ResourceService) lookup(ctx context.Context, id booking.ResourceID) (persistence.Resource, error) {
	if s == nil {
		return persistence.Resource{}, fmt.Errorf("ResourceService is nil")
	}
	if record, ok := s.cache.Get(string(id)); ok {
		return record, nil
	}
	if s.resources == nil {
		return persistence.Resource{}, ErrNotFound
	}
	record, err := s.resources.GetResource(ctx, string(id))
	if err != nil {
		return persistence.Resource{}, mapResourceRepoError(err)
	}
	s.cache.Store(record)
	return record, nil
}

func validateResourceInput(input ResourceInput) (booking.Category, *ValidationError) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	category, err := booking.ParseCategory(input.Category)
	if err != nil {
		vErr.add("category", "category must be room or vehicle")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if input.Restricted && strings.TrimSpace(input.UnlockToken) == "" {
		vErr.add("unlock_token", "unlock token is required for restricted resources")
	}

	return category, vErr
}

func mapResourceRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("resource", "resource violates catalog constraints")
		return vErr
	}
	return err
}
