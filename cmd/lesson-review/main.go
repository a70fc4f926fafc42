package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

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

	// "HandleLessonReview" is the entry point name deployed to GCP.
	functions.HTTP("HandleLessonReview", handleLessonReview)
}

// main is required by the Go Functions Framework.
func main() {}

func handleLessonReview(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		reviewInstance, initErr = services.NewLessonReview(context.Background())
	})
	if initErr != nil {
		slog.Error("Lesson review initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	reviewInstance.ServeHTTP(w, r)
}
