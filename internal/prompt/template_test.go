package prompt

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := Render("Hello {{name}}, topic is {{topic}}", map[string]string{
		"name":  "Ada",
		"topic": "compilers",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "Hello Ada, topic is compilers" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := Render("Hello {{name}}", map[string]string{})
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables("{{a}} and {{b}} and {{a}} again")
	if len(vars) != 2 {
		t.Fatalf("expected 2 unique variables, got %v", vars)
	}
	if vars[0] != "a" || vars[1] != "b" {
		t.Errorf("unexpected variables: %v", vars)
	}
}

func TestPipelineTemplatesRender(t *testing.T) {
	cases := []struct {
		name     string
		template string
		vars     map[string]string
	}{
		{"judge", JudgeTemplate, map[string]string{"content": "x"}},
		{"elaborate", ElaborateTemplate, map[string]string{"content": "x"}},
		{"summary", SummaryTemplate, map[string]string{"briefing": "b", "content": "x"}},
		{"outline", OutlineTemplate, map[string]string{
			"briefing": "b", "content": "x", "num_segments": "4",
			"language": "english", "speakers": "Ada, Ben",
		}},
		{"transcript", TranscriptTemplate, map[string]string{
			"briefing": "b", "content": "x", "outline": "o",
			"segment_name": "Intro", "segment_size": "short", "turns": "2",
			"speaker_notes": "Ada", "position": PositionFirst,
			"context": "", "emotions": "neutral", "speeds": "normal",
			"tag_notes": "",
		}},
	}
	for _, tc := range cases {
		if _, err := Render(tc.template, tc.vars); err != nil {
			t.Errorf("%s template did not render: %v", tc.name, err)
		}
	}
}
