package prompts

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/lessonreview/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfigStore reads prompt overrides from a configuration collection,
// one document per key.
type FirestoreConfigStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreConfigStore creates a config store over the given collection.
func NewFirestoreConfigStore(client *firestore.Client, collection string) *FirestoreConfigStore {
	return &FirestoreConfigStore{client: client, collection: collection}
}

// PromptConfig implements ConfigStore.
func (s *FirestoreConfigStore) PromptConfig(ctx context.Context, key string) (*ConfigEntry, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", key, err)
	}
	var entry ConfigEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", key, err)
	}
	return &entry, nil
}

// FirestoreVersionStore reads versioned prompt records.
type FirestoreVersionStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreVersionStore creates a version store over the given collection.
func NewFirestoreVersionStore(client *firestore.Client, collection string) *FirestoreVersionStore {
	return &FirestoreVersionStore{client: client, collection: collection}
}

// ActiveVersion implements VersionStore. When several records are active the
// newest one wins.
func (s *FirestoreVersionStore) ActiveVersion(ctx context.Context, mode models.Mode) (*PromptVersion, error) {
	it := s.client.Collection(s.collection).
		Where("mode", "==", string(mode)).
		Where("isActive", "==", true).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active prompt for %s: %w", mode, err)
	}
	var v PromptVersion
	if err := doc.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to decode prompt %s: %w", doc.Ref.ID, err)
	}
	return &v, nil
}
