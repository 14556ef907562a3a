package episode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/podica/podica/internal/models"
)

const episodeColumns = `id, name, briefing, num_segments, language, dialect, profile_name,
	status, stage, output_path, storage_url, callback_url, error, transcript,
	created_at, updated_at, completed_at`

// Service persists episode run records.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type CreateRequest struct {
	Name        string
	Briefing    string
	NumSegments int
	Language    string
	Dialect     string
	ProfileName string
	CallbackURL string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Episode, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO episodes (id, name, briefing, num_segments, language, dialect, profile_name, status, callback_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+episodeColumns,
		uuid.New(), req.Name, req.Briefing, req.NumSegments, req.Language,
		req.Dialect, req.ProfileName, models.EpisodeStatusPending, req.CallbackURL,
	)
	ep, err := scanEpisode(row)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}
	return ep, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Episode, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE id = $1`, id)
	ep, err := scanEpisode(row)
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return ep, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Episode, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var eps []models.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		eps = append(eps, *ep)
	}
	return eps, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM episodes WHERE id = $1`, id)
	return err
}

// ProgressKey is the cache key under which the worker publishes the
// current pipeline stage of a running episode.
func ProgressKey(id uuid.UUID) string {
	return "episode:progress:" + id.String()
}

// MarkGenerating transitions a pending episode to generating. The status
// guard keeps a requeued task from restarting a finished run.
func (s *Service) MarkGenerating(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE episodes SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = $3`,
		models.EpisodeStatusGenerating, id, models.EpisodeStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark generating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("episode %s is not pending", id)
	}
	return nil
}

// UpdateStage records the pipeline stage an episode is currently in.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, stage string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE episodes SET stage = $1, updated_at = now() WHERE id = $2`, stage, id)
	return err
}

func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID, outputPath, storageURL string, transcript json.RawMessage) error {
	_, err := s.db.Exec(ctx,
		`UPDATE episodes SET status = $1, output_path = $2, storage_url = $3, transcript = $4,
		 updated_at = now(), completed_at = now() WHERE id = $5`,
		models.EpisodeStatusCompleted, outputPath, storageURL, transcript, id,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE episodes SET status = $1, error = $2, updated_at = now(), completed_at = now()
		 WHERE id = $3`,
		models.EpisodeStatusFailed, cause, id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (*models.Episode, error) {
	var ep models.Episode
	err := row.Scan(
		&ep.ID, &ep.Name, &ep.Briefing, &ep.NumSegments, &ep.Language, &ep.Dialect,
		&ep.ProfileName, &ep.Status, &ep.Stage, &ep.OutputPath, &ep.StorageURL,
		&ep.CallbackURL, &ep.Error, &ep.Transcript,
		&ep.CreatedAt, &ep.UpdatedAt, &ep.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ep, nil
}
