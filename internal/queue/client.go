package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/podica/podica/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueEpisodeGenerate queues one generation run. The pipeline carries
// its own retry policies, so the task itself is never retried; a failed
// run stays failed until a new episode is requested.
func (c *Client) EnqueueEpisodeGenerate(payload EpisodeGeneratePayload) error {
	return c.enqueue(TypeEpisodeGenerate, payload, asynq.MaxRetry(0), asynq.Timeout(60*time.Minute))
}

func (c *Client) EnqueueSourceIngest(payload SourceIngestPayload) error {
	return c.enqueue(TypeSourceIngest, payload, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
