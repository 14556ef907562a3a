package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EpisodeEvent is the payload POSTed to an episode's callback URL when
// its run finishes.
type EpisodeEvent struct {
	EpisodeID uuid.UUID `json:"episode_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	OutputURL string    `json:"output_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier delivers completion callbacks. Deliveries are fire-and-forget;
// a failed POST is logged, not retried.
type Notifier struct {
	httpClient *http.Client
	secret     string
	logger     *slog.Logger
}

func NewNotifier(secret string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		secret:     secret,
		logger:     slog.Default(),
	}
}

// Send POSTs the event to url. A signature header lets receivers verify
// the payload when a shared secret is configured.
func (n *Notifier) Send(ctx context.Context, url string, event EpisodeEvent) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Podica-Event", "episode."+event.Status)
	if n.secret != "" {
		req.Header.Set("X-Podica-Signature", sign(payload, n.secret))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("callback delivery failed", "url", url, "episode_id", event.EpisodeID, "error", err)
		return fmt.Errorf("deliver callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("callback received non-success response",
			"url", url, "episode_id", event.EpisodeID, "status", resp.StatusCode)
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
