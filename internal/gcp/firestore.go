package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreTarget names the database holding runs, config and prompts.
type FirestoreTarget struct {
	ProjectID string
	// DatabaseID selects a named database; empty means "(default)".
	DatabaseID string
}

func (t FirestoreTarget) database() string {
	if t.DatabaseID == "" {
		return firestore.DefaultDatabaseID
	}
	return t.DatabaseID
}

func (t FirestoreTarget) String() string {
	return fmt.Sprintf("projects/%s/databases/%s", t.ProjectID, t.database())
}

// NewFirestoreClient opens the database named by target.
func NewFirestoreClient(ctx context.Context, target FirestoreTarget, opts ...option.ClientOption) (*firestore.Client, error) {
	if target.ProjectID == "" {
		return nil, fmt.Errorf("firestore: project ID is required")
	}
	client, err := firestore.NewClientWithDatabase(ctx, target.ProjectID, target.database(), opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore %s: %w", target, err)
	}
	return client, nil
}
