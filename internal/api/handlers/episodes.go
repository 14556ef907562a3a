package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/podica/podica/internal/cache"
	"github.com/podica/podica/internal/episode"
	"github.com/podica/podica/internal/models"
	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/queue"
)

type EpisodeHandler struct {
	svc      *episode.Service
	queue    *queue.Client
	speakers *profile.SpeakerConfig
	cache    *cache.Cache
}

func NewEpisodeHandler(svc *episode.Service, qc *queue.Client, speakers *profile.SpeakerConfig, c *cache.Cache) *EpisodeHandler {
	return &EpisodeHandler{svc: svc, queue: qc, speakers: speakers, cache: c}
}

type createEpisodeRequest struct {
	Name        string   `json:"name"`
	Briefing    string   `json:"briefing"`
	NumSegments int      `json:"num_segments"`
	Language    string   `json:"language"`
	Dialect     string   `json:"dialect"`
	Profile     string   `json:"profile"`
	Content     []string `json:"content"`
	SourceURLs  []string `json:"source_urls"`
	CallbackURL string   `json:"callback_url"`
}

// Create registers an episode and queues its generation run.
func (h *EpisodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEpisodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	switch {
	case req.Name == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	case req.Briefing == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "briefing is required"})
		return
	case req.NumSegments < 1:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "num_segments must be at least 1"})
		return
	case len(req.Content) == 0 && len(req.SourceURLs) == 0:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content or source_urls is required"})
		return
	}

	if req.Profile == "" {
		req.Profile = "default"
	}
	if req.Language == "" {
		req.Language = "english"
	}

	// Reject bad profiles at request time rather than inside the worker.
	if _, err := h.speakers.Profile(req.Profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ep, err := h.svc.Create(r.Context(), episode.CreateRequest{
		Name:        req.Name,
		Briefing:    req.Briefing,
		NumSegments: req.NumSegments,
		Language:    req.Language,
		Dialect:     req.Dialect,
		ProfileName: req.Profile,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.queue.EnqueueEpisodeGenerate(queue.EpisodeGeneratePayload{
		EpisodeID: ep.ID.String(),
		Content:   req.Content,
		SourceURL: req.SourceURLs,
	}); err != nil {
		_ = h.svc.MarkFailed(r.Context(), ep.ID, "could not queue generation: "+err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not queue generation"})
		return
	}

	writeJSON(w, http.StatusAccepted, ep)
}

func (h *EpisodeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	eps, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"episodes": eps})
}

func (h *EpisodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.episodeFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

// Status returns just the run state, cheap enough for polling. The worker
// publishes the live stage to the cache ahead of the database row, so the
// cached value wins when present.
func (h *EpisodeHandler) Status(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.episodeFromPath(w, r)
	if !ok {
		return
	}

	stage := ep.Stage
	if h.cache != nil && ep.Status == models.EpisodeStatusGenerating {
		var cached string
		if err := h.cache.Get(r.Context(), episode.ProgressKey(ep.ID), &cached); err == nil && cached != "" {
			stage = cached
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     ep.ID.String(),
		"status": ep.Status,
		"stage":  stage,
		"error":  ep.Error,
	})
}

// Download streams the finished episode file.
func (h *EpisodeHandler) Download(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.episodeFromPath(w, r)
	if !ok {
		return
	}
	if ep.Status != models.EpisodeStatusCompleted || ep.OutputPath == "" {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "episode is not completed"})
		return
	}
	if _, err := os.Stat(ep.OutputPath); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "episode file not found"})
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ep.Name+`.mp3"`)
	http.ServeFile(w, r, ep.OutputPath)
}

func (h *EpisodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid episode ID"})
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if h.cache != nil {
		_ = h.cache.Delete(r.Context(), episode.ProgressKey(id))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EpisodeHandler) episodeFromPath(w http.ResponseWriter, r *http.Request) (*models.Episode, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid episode ID"})
		return nil, false
	}
	ep, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "episode not found"})
		return nil, false
	}
	return ep, true
}
