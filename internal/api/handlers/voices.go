package handlers

import (
	"net/http"
	"sort"

	"github.com/podica/podica/internal/tts"
)

type VoiceHandler struct {
	registry *tts.Registry
}

func NewVoiceHandler(registry *tts.Registry) *VoiceHandler {
	return &VoiceHandler{registry: registry}
}

type providerCapability struct {
	Provider   string         `json:"provider"`
	Capability tts.Capability `json:"capability"`
}

// List reports the capability catalog of every configured synthesis backend.
// Resolving with an empty model selects each backend's default model.
func (h *VoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	providers := h.registry.Providers()
	sort.Strings(providers)

	catalog := make([]providerCapability, 0, len(providers))
	for _, name := range providers {
		synth, err := h.registry.Synthesizer(name, "")
		if err != nil {
			continue
		}
		catalog = append(catalog, providerCapability{
			Provider:   name,
			Capability: synth.Capability(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": catalog})
}
