package pipeline

import (
	"strings"
	"testing"
)

func TestStripReasoning(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"think block", "<think>let me reason\nabout this</think>\n{\"a\":1}", `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"think and fence", "<think>hmm</think>```json\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripReasoning(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUnmarshalModelJSONRepairsSyntaxErrors(t *testing.T) {
	var out struct {
		Segments []Segment `json:"segments"`
	}
	// Trailing comma is invalid JSON but repairable.
	raw := `{"segments": [{"name": "Intro", "size": "short"},]}`
	if err := unmarshalModelJSON(raw, &out); err != nil {
		t.Fatalf("expected repair to succeed: %v", err)
	}
	if len(out.Segments) != 1 || out.Segments[0].Name != "Intro" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestParseOutline(t *testing.T) {
	out, err := parseOutline(`{"segments":[{"name":"Intro","size":"short"},{"name":"Deep dive","size":"long"}]}`)
	if err != nil {
		t.Fatalf("parseOutline failed: %v", err)
	}
	if len(out.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(out.Segments))
	}
	if out.Segments[1].Size != "long" {
		t.Errorf("unexpected size: %q", out.Segments[1].Size)
	}
}

func TestParseOutlineRejectsEmpty(t *testing.T) {
	if _, err := parseOutline(`{"segments":[]}`); err == nil {
		t.Error("expected error for empty outline")
	}
	if _, err := parseOutline(`{"segments":[{"name":"","size":"short"}]}`); err == nil {
		t.Error("expected error for unnamed segment")
	}
}

func TestTranscriptParserValid(t *testing.T) {
	p := newTranscriptParser([]string{"Ada", "Ben"}, []string{"neutral", "excited"}, []string{"normal"})
	lines, err := p.parse(`{"transcript":[
		{"speaker":"Ada","dialogue":"Welcome back.","emotion":"neutral","speed":"normal"},
		{"speaker":"Ben","dialogue":"Great to be here!","emotion":"excited","speed":"normal"}
	]}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Speaker != "Ben" || lines[1].Emotion != "excited" {
		t.Errorf("unexpected line: %+v", lines[1])
	}
}

func TestTranscriptParserRejectsWholeBatch(t *testing.T) {
	p := newTranscriptParser([]string{"Ada"}, []string{"neutral"}, []string{"normal"})

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			"unknown speaker",
			`{"transcript":[{"speaker":"Ada","dialogue":"hi","emotion":"neutral","speed":"normal"},{"speaker":"Eve","dialogue":"hi","emotion":"neutral","speed":"normal"}]}`,
			"unknown speaker",
		},
		{
			"unknown emotion",
			`{"transcript":[{"speaker":"Ada","dialogue":"hi","emotion":"angry","speed":"normal"}]}`,
			"unknown emotion",
		},
		{
			"unknown speed",
			`{"transcript":[{"speaker":"Ada","dialogue":"hi","emotion":"neutral","speed":"warp"}]}`,
			"unknown speed",
		},
		{
			"empty dialogue",
			`{"transcript":[{"speaker":"Ada","dialogue":"  ","emotion":"neutral","speed":"normal"}]}`,
			"empty dialogue",
		},
		{
			"no lines",
			`{"transcript":[]}`,
			"no dialogue lines",
		},
	}
	for _, tc := range cases {
		lines, err := p.parse(tc.raw)
		if err == nil {
			t.Errorf("%s: expected error, got %d lines", tc.name, len(lines))
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
		if lines != nil {
			t.Errorf("%s: a rejected batch must return no lines", tc.name)
		}
	}
}

func TestTranscriptParserAllowsEmptyEmotionAndSpeed(t *testing.T) {
	p := newTranscriptParser([]string{"Ada"}, []string{"neutral"}, []string{"normal"})
	lines, err := p.parse(`{"transcript":[{"speaker":"Ada","dialogue":"hi"}]}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestTurnsFor(t *testing.T) {
	cases := map[string]int{
		"short":  2,
		"medium": 5,
		"long":   8,
		"LONG":   8,
		"weird":  8,
		"":       8,
	}
	for size, want := range cases {
		if got := turnsFor(size); got != want {
			t.Errorf("turnsFor(%q) = %d, want %d", size, got, want)
		}
	}
}
