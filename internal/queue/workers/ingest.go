package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/podica/podica/internal/library"
	"github.com/podica/podica/internal/queue"
)

// IngestWorker pulls web sources into the content library.
type IngestWorker struct {
	library *library.Service
}

func NewIngestWorker(lib *library.Service) *IngestWorker {
	return &IngestWorker{library: lib}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SourceIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	src, err := w.library.IngestURL(ctx, payload.URL, payload.Title)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", payload.URL, err)
	}

	slog.Info("ingested source", "source_id", src.ID, "url", payload.URL)
	return nil
}
