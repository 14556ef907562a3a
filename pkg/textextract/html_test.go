package textextract

import (
	"strings"
	"testing"
)

func TestExtractHTML(t *testing.T) {
	doc := `<html><head><title>My Page</title><style>body{color:red}</style></head>
<body><h1>Heading</h1><p>First paragraph.</p><script>alert(1)</script>
<p>Second paragraph.</p></body></html>`

	out, err := ExtractHTML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ExtractHTML failed: %v", err)
	}
	if !strings.Contains(out.Content, "First paragraph.") || !strings.Contains(out.Content, "Second paragraph.") {
		t.Errorf("missing body text: %q", out.Content)
	}
	if strings.Contains(out.Content, "alert") || strings.Contains(out.Content, "color:red") {
		t.Errorf("script/style content leaked: %q", out.Content)
	}
	if out.Metadata["title"] != "My Page" {
		t.Errorf("title = %q, want My Page", out.Metadata["title"])
	}
}
