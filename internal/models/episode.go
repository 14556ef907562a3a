package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Episode is one generation run and its result.
type Episode struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Briefing    string          `json:"briefing" db:"briefing"`
	NumSegments int             `json:"num_segments" db:"num_segments"`
	Language    string          `json:"language,omitempty" db:"language"`
	Dialect     string          `json:"dialect,omitempty" db:"dialect"`
	ProfileName string          `json:"profile_name" db:"profile_name"`
	Status      string          `json:"status" db:"status"`
	Stage       string          `json:"stage,omitempty" db:"stage"`
	OutputPath  string          `json:"output_path,omitempty" db:"output_path"`
	StorageURL  string          `json:"storage_url,omitempty" db:"storage_url"`
	CallbackURL string          `json:"callback_url,omitempty" db:"callback_url"`
	Error       string          `json:"error,omitempty" db:"error"`
	Transcript  json.RawMessage `json:"transcript,omitempty" db:"transcript"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

const (
	EpisodeStatusPending    = "pending"
	EpisodeStatusGenerating = "generating"
	EpisodeStatusCompleted  = "completed"
	EpisodeStatusFailed     = "failed"
)
