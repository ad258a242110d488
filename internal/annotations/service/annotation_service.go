package service

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
	"github.com/Barap1/UniExplorer/internal/bodies"
)

// Store is the slice of the annotation repository the service needs.
type Store interface {
	Create(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error)
	ListByBody(ctx context.Context, body, userID string) ([]domain.Annotation, error)
}

// AnnotationService handles business logic for annotations: write gating,
// validation and body checks. Writes are fire-and-forget from the viewer's
// perspective; there is no partial-failure or rollback handling beyond the
// single atomic document insert.
type AnnotationService struct {
	store    Store
	registry *bodies.Registry

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Crowd-sourced writes are cheap to spam; one discovery every two seconds
// with a small burst is plenty for a human with a map.
const (
	writeRate  = rate.Limit(0.5)
	writeBurst = 5
)

// NewAnnotationService creates a new AnnotationService
func NewAnnotationService(store Store, registry *bodies.Registry) *AnnotationService {
	return &AnnotationService{
		store:    store,
		registry: registry,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Create validates and stores a new annotation for an authenticated user.
func (s *AnnotationService) Create(ctx context.Context, userID, author string, req *domain.CreateAnnotationRequest) (*domain.Annotation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrNotAuthenticated
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := s.registry.Get(req.Body)
	if err != nil {
		return nil, domain.ErrUnknownBody
	}

	if !s.limiter(userID).Allow() {
		return nil, domain.ErrRateLimited
	}

	if strings.TrimSpace(author) == "" {
		author = domain.DefaultAuthor
	}

	a := &domain.Annotation{
		Lat:    req.Lat,
		Lng:    req.Lng,
		Text:   strings.TrimSpace(req.Text),
		Author: author,
		Body:   body.Key,
		UserID: userID,
	}

	return s.store.Create(ctx, a)
}

// ListByBody returns the annotations for a body, optionally only the ones
// authored by userID (the "mine only" filter).
func (s *AnnotationService) ListByBody(ctx context.Context, body, userID string) ([]domain.Annotation, error) {
	b, err := s.registry.Get(body)
	if err != nil {
		return nil, domain.ErrUnknownBody
	}
	return s.store.ListByBody(ctx, b.Key, userID)
}

func (s *AnnotationService) limiter(userID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(writeRate, writeBurst)
		s.limiters[userID] = l
	}
	return l
}
