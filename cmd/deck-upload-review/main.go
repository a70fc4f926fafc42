package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/lessonreview/internal/services"
)

var (
	reviewInstance *services.LessonReviewFunction
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ReviewUploadedDeck", reviewUploadedDeck)
}

// main is required by the Go Functions Framework.
func main() {}

// reviewUploadedDeck runs on storage object-finalized events.
func reviewUploadedDeck(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		reviewInstance, initErr = services.NewLessonReview(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "eventId", e.ID())
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Blocked decks are a result, not a failure; only errors mark the invocation failed.
	_, err := reviewInstance.ProcessUpload(ctx, gcsEvent)
	return err
}
