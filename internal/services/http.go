package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

// maxRequestBytes bounds a JSON review request, base64 deck included.
const maxRequestBytes = 96 << 20

// ServeHTTP decodes a ReviewRequest and writes the ReviewResponse with the
// status from HTTPStatus.
func (f *LessonReviewFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.ReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		writeJSON(w, http.StatusBadRequest, &models.ReviewResponse{
			Status: models.StatusFailed,
			Stage:  "input",
			Error:  "could not parse JSON: " + err.Error(),
		})
		return
	}

	res, err := f.Process(r.Context(), &req)
	writeJSON(w, HTTPStatus(res, err), res)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
