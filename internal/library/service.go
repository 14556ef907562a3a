package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podica/podica/internal/embedding"
	"github.com/podica/podica/internal/models"
	"github.com/podica/podica/internal/vectorstore"
	"github.com/podica/podica/pkg/chunker"
	"github.com/podica/podica/pkg/textextract"
	"github.com/podica/podica/pkg/tokenizer"
)

// Service is the content library: source material is extracted, chunked,
// embedded and stored so episode briefings can pull related context.
type Service struct {
	db       *pgxpool.Pool
	store    vectorstore.VectorStore
	embedder *embedding.Service
	chunker  chunker.Chunker
	logger   *slog.Logger
}

func NewService(db *pgxpool.Pool, store vectorstore.VectorStore, embedder *embedding.Service) *Service {
	return &Service{
		db:       db,
		store:    store,
		embedder: embedder,
		chunker:  chunker.New(),
		logger:   slog.Default(),
	}
}

type IngestRequest struct {
	Title    string
	Origin   string            // file path or URL, informational
	FileType string            // ".pdf", ".txt", "text/html", ...; empty means plain text
	Data     io.ReaderAt
	Size     int64
	Text     string // raw text alternative to Data
	Metadata map[string]any
}

// Ingest extracts, chunks, embeds and stores one content source.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*models.ContentSource, error) {
	text := req.Text
	if text == "" && req.Data != nil {
		extracted, err := textextract.Extract(req.Data, req.Size, req.FileType)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		text = extracted.Content
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("content source has no extractable text")
	}

	src, err := s.insertSource(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.indexChunks(ctx, src.ID, text); err != nil {
		_ = s.updateStatus(ctx, src.ID, models.SourceStatusFailed)
		return nil, err
	}
	if err := s.updateStatus(ctx, src.ID, models.SourceStatusReady); err != nil {
		return nil, err
	}
	src.Status = models.SourceStatusReady
	return src, nil
}

// IngestURL fetches a web page and ingests its text.
func (s *Service) IngestURL(ctx context.Context, url, title string) (*models.ContentSource, error) {
	extracted, err := textextract.FetchURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if title == "" {
		if t := extracted.Metadata["title"]; t != "" {
			title = t
		} else {
			title = url
		}
	}
	return s.Ingest(ctx, IngestRequest{
		Title:  title,
		Origin: url,
		Text:   extracted.Content,
	})
}

func (s *Service) indexChunks(ctx context.Context, sourceID uuid.UUID, text string) error {
	pieces := s.chunker.Chunk(text, chunker.DefaultOptions())
	if len(pieces) == 0 {
		return fmt.Errorf("chunking produced no chunks")
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(pieces), len(vectors))
	}

	chunks := make([]vectorstore.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = vectorstore.Chunk{
			SourceID:   sourceID,
			ChunkIndex: p.Index,
			Content:    p.Content,
			Embedding:  vectors[i],
			TokenCount: tokenizer.CountTokens(p.Content),
		}
	}
	if err := s.store.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	s.logger.Info("indexed content source", "source_id", sourceID, "chunks", len(chunks))
	return nil
}

// Search embeds the query and returns the most similar library chunks.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]vectorstore.SearchResult, error) {
	vec, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.store.SimilaritySearch(ctx, vec, vectorstore.SearchOptions{TopK: topK})
}

// BriefingContext returns library text related to a briefing, for use as
// extra source material in an episode run. Missing context is not an
// error; an empty library yields an empty slice.
func (s *Service) BriefingContext(ctx context.Context, briefing string, topK int) ([]string, error) {
	results, err := s.Search(ctx, briefing, topK)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Content)
	}
	return texts, nil
}

func (s *Service) GetSource(ctx context.Context, id uuid.UUID) (*models.ContentSource, error) {
	var src models.ContentSource
	err := s.db.QueryRow(ctx,
		`SELECT id, title, origin, content_type, file_size_bytes, status, metadata, created_at
		 FROM content_sources WHERE id = $1`, id,
	).Scan(&src.ID, &src.Title, &src.Origin, &src.ContentType, &src.FileSizeBytes, &src.Status, &src.Metadata, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get content source: %w", err)
	}
	return &src, nil
}

func (s *Service) ListSources(ctx context.Context, limit, offset int) ([]models.ContentSource, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, origin, content_type, file_size_bytes, status, metadata, created_at
		 FROM content_sources ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list content sources: %w", err)
	}
	defer rows.Close()

	var out []models.ContentSource
	for rows.Next() {
		var src models.ContentSource
		if err := rows.Scan(&src.ID, &src.Title, &src.Origin, &src.ContentType, &src.FileSizeBytes, &src.Status, &src.Metadata, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content source: %w", err)
		}
		out = append(out, src)
	}
	return out, nil
}

func (s *Service) DeleteSource(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	_, err := s.db.Exec(ctx, `DELETE FROM content_sources WHERE id = $1`, id)
	return err
}

func (s *Service) insertSource(ctx context.Context, req IngestRequest) (*models.ContentSource, error) {
	metadata, _ := json.Marshal(req.Metadata)
	if req.Metadata == nil {
		metadata = []byte("{}")
	}

	var src models.ContentSource
	err := s.db.QueryRow(ctx,
		`INSERT INTO content_sources (id, title, origin, content_type, file_size_bytes, status, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, title, origin, content_type, file_size_bytes, status, metadata, created_at`,
		uuid.New(), req.Title, req.Origin, req.FileType, req.Size, models.SourceStatusProcessing, metadata,
	).Scan(&src.ID, &src.Title, &src.Origin, &src.ContentType, &src.FileSizeBytes, &src.Status, &src.Metadata, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert content source: %w", err)
	}
	return &src, nil
}

func (s *Service) updateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, `UPDATE content_sources SET status = $1 WHERE id = $2`, status, id)
	return err
}
