package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/podica/podica/internal/profile"
)

type ProfileHandler struct {
	speakers *profile.SpeakerConfig
	emotions *profile.EmotionConfig
	speeds   *profile.SpeedConfig
}

func NewProfileHandler(speakers *profile.SpeakerConfig, emotions *profile.EmotionConfig, speeds *profile.SpeedConfig) *ProfileHandler {
	return &ProfileHandler{speakers: speakers, emotions: emotions, speeds: speeds}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": h.speakers.ProfileNames()})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.speakers.Profile(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Emotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"emotions": h.emotions.All()})
}

func (h *ProfileHandler) Speeds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"speeds": h.speeds.Speeds})
}
