package gcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirestoreTarget_String(t *testing.T) {
	assert.Equal(t, "projects/p1/databases/(default)", FirestoreTarget{ProjectID: "p1"}.String())
	assert.Equal(t, "projects/p1/databases/lessons", FirestoreTarget{ProjectID: "p1", DatabaseID: "lessons"}.String())
}

func TestNewFirestoreClient_RequiresProject(t *testing.T) {
	client, err := NewFirestoreClient(context.Background(), FirestoreTarget{DatabaseID: "lessons"})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "project ID is required")
}
