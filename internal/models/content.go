package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentSource is an ingested piece of source material in the library.
type ContentSource struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Title         string          `json:"title" db:"title"`
	Origin        string          `json:"origin,omitempty" db:"origin"` // file path or URL
	ContentType   string          `json:"content_type,omitempty" db:"content_type"`
	FileSizeBytes int64           `json:"file_size_bytes,omitempty" db:"file_size_bytes"`
	Status        string          `json:"status" db:"status"`
	Metadata      json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// SourceChunk is one embedded slice of a content source.
type SourceChunk struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SourceID   uuid.UUID `json:"source_id" db:"source_id"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"-" db:"embedding"`
	TokenCount int       `json:"token_count" db:"token_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const (
	SourceStatusPending    = "pending"
	SourceStatusProcessing = "processing"
	SourceStatusReady      = "ready"
	SourceStatusFailed     = "failed"
)
