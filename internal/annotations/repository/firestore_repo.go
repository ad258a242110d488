package repository

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
)

const annotationCollection = "annotations"

// AnnotationRepository handles Firestore operations for annotations. The
// store is the sole source of truth; everything the service hands out is a
// read-through view of it.
type AnnotationRepository struct {
	client *firestore.Client
}

// NewAnnotationRepository creates a new AnnotationRepository
func NewAnnotationRepository(client *firestore.Client) *AnnotationRepository {
	return &AnnotationRepository{client: client}
}

func (r *AnnotationRepository) col() *firestore.CollectionRef {
	return r.client.Collection(annotationCollection)
}

// Create inserts a new annotation document. The creation timestamp is
// assigned by the store, not the caller.
func (r *AnnotationRepository) Create(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	doc := a.ToDoc()
	doc["createdAt"] = firestore.ServerTimestamp

	ref, wr, err := r.col().Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}

	created := *a
	created.ID = ref.ID
	created.CreatedAt = wr.UpdateTime
	return &created, nil
}

// ListByBody returns all annotations for a celestial body, optionally
// restricted to one author's user id.
func (r *AnnotationRepository) ListByBody(ctx context.Context, body, userID string) ([]domain.Annotation, error) {
	q := r.col().Where("body", "==", body)
	if userID != "" {
		q = q.Where("userId", "==", userID)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}

	return parseDocs(docs), nil
}

// ListAll returns the entire annotation collection. This is a full scan used
// by the leaderboard aggregation only.
func (r *AnnotationRepository) ListAll(ctx context.Context) ([]domain.Annotation, error) {
	docs, err := r.col().OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation collection: %w", err)
	}

	return parseDocs(docs), nil
}

// Watch opens a live query for a (body, userID) pair. Every change to the
// result set yields a full snapshot from Next. Stop (or canceling ctx) ends
// the subscription.
func (r *AnnotationRepository) Watch(ctx context.Context, body, userID string) *Subscription {
	q := r.col().Where("body", "==", body)
	if userID != "" {
		q = q.Where("userId", "==", userID)
	}

	return &Subscription{iter: q.Snapshots(ctx)}
}

// Subscription wraps a Firestore snapshot iterator into the snapshot
// notification stream the sync loop consumes.
type Subscription struct {
	iter *firestore.QuerySnapshotIterator
}

// Next blocks until the next snapshot notification and returns the full
// result set it carries.
func (s *Subscription) Next() ([]domain.Annotation, error) {
	snap, err := s.iter.Next()
	if err != nil {
		if status.Code(err) == codes.Canceled {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("snapshot delivery failed: %w", err)
	}

	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot documents: %w", err)
	}

	return parseDocs(docs), nil
}

// Stop ends the subscription. Safe to call more than once.
func (s *Subscription) Stop() {
	s.iter.Stop()
}

func parseDocs(docs []*firestore.DocumentSnapshot) []domain.Annotation {
	out := make([]domain.Annotation, 0, len(docs))
	for _, d := range docs {
		a, ok := domain.FromDoc(d.Ref.ID, d.Data())
		if !ok {
			log.Printf("[annotations] skipping malformed document %s", d.Ref.ID)
			continue
		}
		out = append(out, a)
	}
	return out
}
