package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/storage"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
)

// RunHandler serves the archived agent test runs.
type RunHandler struct {
	store   testrun.Store
	storage storage.BlobStorage
	logger  logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(store testrun.Store, blobs storage.BlobStorage, log logger.Logger) *RunHandler {
	return &RunHandler{
		store:   store,
		storage: blobs,
		logger:  log,
	}
}

// List handles listing runs, newest first.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	runs, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list test runs")
		return
	}

	total, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count test runs")
		return
	}

	if runs == nil {
		runs = []*testrun.Run{}
	}
	respondJSON(w, http.StatusOK, NewPaginatedResponse(runs, total, limit, offset))
}

// Get handles fetching one run with its agent results.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "run_id", "test run")
	if !ok {
		return
	}

	run, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, testrun.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "test run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get test run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// Artifact streams the captured stdout or stderr of one agent.
func (h *RunHandler) Artifact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "run_id", "test run")
	if !ok {
		return
	}
	vars := mux.Vars(r)
	agent, stream := vars["agent"], vars["stream"]
	if stream != "stdout" && stream != "stderr" {
		respondError(w, http.StatusBadRequest, "stream must be stdout or stderr")
		return
	}

	run, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, testrun.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "test run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get test run")
		return
	}

	var result *testrun.AgentResult
	for i := range run.Results {
		if run.Results[i].Agent == agent {
			result = &run.Results[i]
			break
		}
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "agent not found in test run")
		return
	}

	key, ok := result.ArtifactKey(stream)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no %s captured", stream))
		return
	}

	reader, err := h.storage.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "artifact not found")
			return
		}
		h.logger.Error(r.Context(), "failed to download artifact", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
			"agent":  agent,
			"stream": stream,
		})
		respondError(w, http.StatusInternalServerError, "failed to download artifact")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", agent+"-"+stream+".log"))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error(r.Context(), "failed to stream artifact", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
	}
}
