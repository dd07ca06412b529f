package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/contribsync/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// AddRepoRequest is the request body for registering a repository.
type AddRepoRequest struct {
	FullName     string   `json:"full_name"`
	Enterprise   bool     `json:"enterprise"`
	Contributors []string `json:"contributors"`
}

// TriggerSyncRequest optionally names a single repository to sweep.
type TriggerSyncRequest struct {
	RepoFullName string `json:"repo_full_name"`
}

// SyncResponse reports the outcome of a manually triggered sweep.
type SyncResponse struct {
	Status string `json:"status"`
	Repo   string `json:"repo,omitempty"`
}

// RepoResponse is the JSON representation of a tracked repository.
type RepoResponse struct {
	FullName     string   `json:"full_name"`
	Enterprise   bool     `json:"enterprise"`
	Contributors []string `json:"contributors"`
	Snapshot     string   `json:"snapshot"`
	LastUpdate   string   `json:"last_update"`
	AddedAt      string   `json:"added_at"`
}

// toRepoResponse converts a domain Repository to its JSON representation.
func toRepoResponse(repo model.Repository) RepoResponse {
	contributors := repo.Contributors
	if contributors == nil {
		contributors = []string{}
	}

	return RepoResponse{
		FullName:     repo.FullName,
		Enterprise:   repo.Enterprise,
		Contributors: contributors,
		Snapshot:     repo.Snapshot,
		LastUpdate:   formatIfSet(repo.LastUpdate),
		AddedAt:      formatIfSet(repo.AddedAt),
	}
}

// formatIfSet formats t as RFC3339, or returns "" for the zero time.
func formatIfSet(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
