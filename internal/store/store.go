// Package store persists QA runs. Runs are append-only: there is no update or
// delete, and every Create yields a new id.
package store

import (
	"context"
	"errors"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("qa run not found")

// RunStore is the document store behind the audit trail.
type RunStore interface {
	Create(ctx context.Context, run *models.QARun) (string, error)
	Get(ctx context.Context, id string) (*models.QARun, error)
}
