package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// DefaultRunsCollection holds one document per QA run.
const DefaultRunsCollection = "qa_runs"

var _ RunStore = (*FirestoreRunStore)(nil)

// FirestoreRunStore writes runs with server-assigned document ids.
type FirestoreRunStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRunStore(client *firestore.Client, collection string) *FirestoreRunStore {
	if collection == "" {
		collection = DefaultRunsCollection
	}
	return &FirestoreRunStore{client: client, collection: collection}
}

// Create stores a new document and returns its id. It fails rather than overwrite.
func (s *FirestoreRunStore) Create(ctx context.Context, run *models.QARun) (string, error) {
	ref := s.client.Collection(s.collection).NewDoc()
	if _, err := ref.Create(ctx, run); err != nil {
		return "", fmt.Errorf("failed to create %s/%s: %w", s.collection, ref.ID, err)
	}
	return ref.ID, nil
}

func (s *FirestoreRunStore) Get(ctx context.Context, id string) (*models.QARun, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", s.collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", s.collection, id, err)
	}

	var run models.QARun
	if err := snap.DataTo(&run); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", s.collection, id, err)
	}
	run.ID = snap.Ref.ID
	return &run, nil
}
