package queue

const (
	TypeEpisodeGenerate = "episode:generate"
	TypeSourceIngest    = "source:ingest"
)

type EpisodeGeneratePayload struct {
	EpisodeID string   `json:"episode_id"`
	Content   []string `json:"content"`
	SourceURL []string `json:"source_urls,omitempty"`
}

type SourceIngestPayload struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}
