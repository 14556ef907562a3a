package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/podica/podica/internal/profile"
	"github.com/podica/podica/internal/tts"
)

type fakeModel struct {
	fn    func(prompt string) (string, error)
	calls int
}

func (m *fakeModel) Invoke(_ context.Context, prompt string) (string, error) {
	m.calls++
	return m.fn(prompt)
}

// fakeSynth records every request and writes the line text as the clip
// bytes. failuresLeft[path] makes the first N calls for that clip fail.
type fakeSynth struct {
	capability tts.Capability

	mu           sync.Mutex
	requests     []tts.Request
	failuresLeft map[string]int
	events       *[]string
}

func (s *fakeSynth) Name() string               { return "fake" }
func (s *fakeSynth) Capability() tts.Capability { return s.capability }

func (s *fakeSynth) Synthesize(_ context.Context, req tts.Request) error {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	if s.failuresLeft[req.OutputPath] > 0 {
		s.failuresLeft[req.OutputPath]--
		s.mu.Unlock()
		return fmt.Errorf("synthesis unavailable")
	}
	if s.events != nil {
		*s.events = append(*s.events, "clip:"+filepath.Base(req.OutputPath))
	}
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(req.OutputPath, []byte(req.Text), 0o644)
}

type fakeSource map[string]tts.Synthesizer

func (f fakeSource) Synthesizer(provider, _ string) (tts.Synthesizer, error) {
	s, ok := f[provider]
	if !ok {
		return nil, fmt.Errorf("no synthesis backend registered for provider %q", provider)
	}
	return s, nil
}

func testEmotions() *profile.EmotionConfig {
	return &profile.EmotionConfig{Emotions: map[string]profile.Emotion{
		"neutral": {Name: "neutral", Text: []string{"Speak evenly."}},
		"excited": {Name: "excited", Text: []string{"Speak with energy."}},
	}}
}

func testProfile() *profile.SpeakerProfile {
	return &profile.SpeakerProfile{
		Provider: "fake",
		Model:    "m1",
		Speakers: []profile.Speaker{
			{Name: "Ada", VoiceID: "v1"},
			{Name: "Ben", VoiceID: "v2"},
		},
	}
}

func testState(t *testing.T, transcript []Dialogue) *State {
	t.Helper()
	return &State{
		EpisodeName: "ep1",
		OutputDir:   t.TempDir(),
		Content:     []string{strings.Repeat("x", 600)},
		Briefing:    "a show about tests",
		NumSegments: 2,
		Profile:     testProfile(),
		Emotions:    testEmotions(),
		Speeds:      profile.DefaultSpeedConfig(),
		Transcript:  transcript,
	}
}

func testRunner(synth *fakeSynth, qa, outline, transcript *fakeModel) *Runner {
	r := NewRunner(qa, outline, transcript, fakeSource{"fake": synth}, DefaultConfig())
	r.Sleep = func(time.Duration) {}
	return r
}

func lines(n int) []Dialogue {
	out := make([]Dialogue, n)
	for i := range out {
		speaker := "Ada"
		if i%2 == 1 {
			speaker = "Ben"
		}
		out[i] = Dialogue{Speaker: speaker, Text: fmt.Sprintf("L%d", i), Emotion: "neutral", Speed: "normal"}
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	synth := &fakeSynth{capability: tts.Capability{Languages: []string{"en"}}}

	qa := &fakeModel{fn: func(string) (string, error) { return "no", nil }}
	outline := &fakeModel{fn: func(string) (string, error) {
		return `{"segments":[{"name":"Intro","size":"short"},{"name":"Wrap","size":"short"}]}`, nil
	}}
	transcript := &fakeModel{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, `"Intro"`) {
			return `{"transcript":[
				{"speaker":"Ada","dialogue":"L0","emotion":"neutral","speed":"normal"},
				{"speaker":"Ben","dialogue":"L1","emotion":"excited","speed":"fast"}]}`, nil
		}
		return `{"transcript":[
			{"speaker":"Ada","dialogue":"L2","emotion":"neutral","speed":"normal"}]}`, nil
	}}

	r := testRunner(synth, qa, outline, transcript)
	var stages []string
	r.OnStage = func(s string) { stages = append(stages, s) }

	st := testState(t, nil)
	if err := r.Run(context.Background(), st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantStages := []string{"preprocess", "outline", "transcript", "synthesize", "combine"}
	if strings.Join(stages, ",") != strings.Join(wantStages, ",") {
		t.Errorf("unexpected stage order: %v", stages)
	}

	if len(st.Transcript) != 3 {
		t.Fatalf("expected 3 transcript lines, got %d", len(st.Transcript))
	}
	if len(st.ClipPaths) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(st.ClipPaths))
	}
	for i, p := range st.ClipPaths {
		want := fmt.Sprintf("%04d.mp3", i)
		if filepath.Base(p) != want {
			t.Errorf("clip %d path %q, want basename %q", i, p, want)
		}
	}

	data, err := os.ReadFile(st.FinalPath)
	if err != nil {
		t.Fatalf("read final file: %v", err)
	}
	if string(data) != "L0L1L2" {
		t.Errorf("combined audio %q, want clips concatenated in transcript order", data)
	}
	if filepath.Base(st.FinalPath) != "ep1.mp3" {
		t.Errorf("final path %q should be named after the episode", st.FinalPath)
	}
}

func TestRunValidatesInputs(t *testing.T) {
	synth := &fakeSynth{}
	qa := &fakeModel{fn: func(string) (string, error) { return "", nil }}
	r := testRunner(synth, qa, qa, qa)

	st := testState(t, nil)
	st.Profile = nil
	if err := r.Run(context.Background(), st); err == nil {
		t.Error("expected error for missing profile")
	}

	st = testState(t, nil)
	st.Briefing = ""
	if err := r.Run(context.Background(), st); err == nil {
		t.Error("expected error for missing briefing")
	}
}

func TestPreprocessPolicy(t *testing.T) {
	qa := &fakeModel{fn: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Summarize the content"):
			return "SUMMARY", nil
		case strings.Contains(prompt, `only "yes" or "no"`):
			if strings.Contains(prompt, "What is Go?") {
				return "Yes", nil
			}
			return "no", nil
		case strings.Contains(prompt, "Answer the questions"):
			return "ELABORATED", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}}
	r := testRunner(&fakeSynth{}, qa, qa, qa)

	st := testState(t, nil)
	passthrough := strings.Repeat("m", 600)
	st.Content = []string{
		strings.Repeat("a", 5001),
		passthrough,
		"Just a short note.",
		"What is Go?",
	}

	out, err := r.Preprocess(context.Background(), st)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	want := []string{"SUMMARY", passthrough, "Just a short note.", "ELABORATED"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("item %d: got %q, want %q", i, out[i], want[i])
		}
	}
	// oversized: 1 call; passthrough: 0; judged no: 1; judged yes: 2.
	if qa.calls != 4 {
		t.Errorf("expected 4 model calls, got %d", qa.calls)
	}
}

func TestOutlineRetryExhaustion(t *testing.T) {
	outline := &fakeModel{fn: func(string) (string, error) { return "not json at all {{{", nil }}
	r := testRunner(&fakeSynth{}, outline, outline, outline)

	st := testState(t, nil)
	_, err := r.GenerateOutline(context.Background(), st)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("expected 3 attempts, got: %v", err)
	}
	if outline.calls != 3 {
		t.Errorf("expected 3 model calls, got %d", outline.calls)
	}
}

func TestTranscriptRetryPerSegment(t *testing.T) {
	calls := 0
	transcript := &fakeModel{fn: func(string) (string, error) {
		calls++
		if calls < 3 {
			return "garbage", nil
		}
		return `{"transcript":[{"speaker":"Ada","dialogue":"hi","emotion":"neutral","speed":"normal"}]}`, nil
	}}
	r := testRunner(&fakeSynth{}, transcript, transcript, transcript)

	st := testState(t, nil)
	st.Outline = &Outline{Segments: []Segment{{Name: "Only", Size: "short"}}}

	out, err := r.GenerateTranscript(context.Background(), st)
	if err != nil {
		t.Fatalf("expected success on 3rd attempt: %v", err)
	}
	if len(out) != 1 || out[0].Text != "hi" {
		t.Errorf("unexpected transcript: %+v", out)
	}
}

func TestSynthesizeBatching(t *testing.T) {
	var events []string
	synth := &fakeSynth{events: &events}
	r := testRunner(synth, nil, nil, nil)
	r.Sleep = func(time.Duration) { events = append(events, "pause") }

	st := testState(t, lines(12))
	paths, err := r.Synthesize(context.Background(), st)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(paths) != 12 {
		t.Fatalf("expected 12 clips, got %d", len(paths))
	}

	// 12 lines at batch size 5 means two inter-batch pauses and strict
	// boundaries: 0-4, then 5-9, then 10-11.
	var batches [][]string
	current := []string{}
	pauses := 0
	for _, e := range events {
		if e == "pause" {
			pauses++
			batches = append(batches, current)
			current = []string{}
			continue
		}
		current = append(current, e)
	}
	batches = append(batches, current)

	if pauses != 2 {
		t.Fatalf("expected 2 inter-batch pauses, got %d", pauses)
	}
	wantSizes := []int{5, 5, 2}
	for i, want := range wantSizes {
		if len(batches[i]) != want {
			t.Errorf("batch %d has %d clips, want %d", i+1, len(batches[i]), want)
		}
	}
	// Everything in batch 2 must carry a higher index than batch 1.
	for i, batch := range batches {
		for _, e := range batch {
			idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(e, "clip:"), ".mp3"))
			if err != nil {
				t.Fatalf("unexpected event %q", e)
			}
			if idx/5 != i {
				t.Errorf("clip %d completed in batch %d", idx, i+1)
			}
		}
	}
}

func TestSynthesizeRetrySucceedsOnFifthAttempt(t *testing.T) {
	st := testState(t, lines(1))
	clipPath := filepath.Join(st.OutputDir, "clips", "0000.mp3")

	synth := &fakeSynth{failuresLeft: map[string]int{clipPath: 4}}
	r := testRunner(synth, nil, nil, nil)

	paths, err := r.Synthesize(context.Background(), st)
	if err != nil {
		t.Fatalf("expected success on 5th attempt: %v", err)
	}
	if len(synth.requests) != 5 {
		t.Errorf("expected exactly 5 synthesis calls, got %d", len(synth.requests))
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("clip was not written: %v", err)
	}
}

func TestSynthesizeRetryExhaustion(t *testing.T) {
	st := testState(t, lines(1))
	clipPath := filepath.Join(st.OutputDir, "clips", "0000.mp3")

	synth := &fakeSynth{failuresLeft: map[string]int{clipPath: 5}}
	r := testRunner(synth, nil, nil, nil)

	_, err := r.Synthesize(context.Background(), st)
	if err == nil {
		t.Fatal("expected error after 5 failed attempts")
	}
	if !strings.Contains(err.Error(), "after 5 attempts") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(synth.requests) != 5 {
		t.Errorf("expected exactly 5 synthesis calls, got %d", len(synth.requests))
	}
}

func TestSynthesizeDialectFallback(t *testing.T) {
	synth := &fakeSynth{capability: tts.Capability{Languages: []string{"zh"}}}
	r := testRunner(synth, nil, nil, nil)

	st := testState(t, lines(1))
	st.Dialect = "sichuanese"
	if _, err := r.Synthesize(context.Background(), st); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := synth.requests[0].Dialect; got != "" {
		t.Errorf("unsupported dialect should be dropped, got %q", got)
	}

	synth2 := &fakeSynth{capability: tts.Capability{Dialects: []string{"sichuanese"}}}
	r2 := testRunner(synth2, nil, nil, nil)
	st2 := testState(t, lines(1))
	st2.Dialect = "sichuanese"
	if _, err := r2.Synthesize(context.Background(), st2); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := synth2.requests[0].Dialect; got != "sichuanese" {
		t.Errorf("supported dialect should pass through, got %q", got)
	}
}

func TestSynthesizeCustomVoice(t *testing.T) {
	sample := []byte("voice-sample")
	encoded := base64.StdEncoding.EncodeToString(sample)

	synth := &fakeSynth{capability: tts.Capability{SupportsCustomVoice: true}}
	r := testRunner(synth, nil, nil, nil)

	st := testState(t, []Dialogue{{Speaker: "Ada", Text: "hi", Emotion: "neutral", Speed: "normal"}})
	st.Profile.Speakers[0].VoiceID = "custom"
	st.Profile.Speakers[0].CustomVoice = encoded

	if _, err := r.Synthesize(context.Background(), st); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(synth.requests[0].ReferenceAudio) != string(sample) {
		t.Errorf("base64 reference should be decoded, got %q", synth.requests[0].ReferenceAudio)
	}

	// A backend without cloning support drops the reference.
	synth2 := &fakeSynth{capability: tts.Capability{SupportsCustomVoice: false}}
	r2 := testRunner(synth2, nil, nil, nil)
	st2 := testState(t, []Dialogue{{Speaker: "Ada", Text: "hi", Emotion: "neutral", Speed: "normal"}})
	st2.Profile.Speakers[0].CustomVoice = encoded

	if _, err := r2.Synthesize(context.Background(), st2); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if synth2.requests[0].ReferenceAudio != nil {
		t.Error("reference audio should be dropped when cloning is unsupported")
	}
}

func TestSynthesizeRequestShape(t *testing.T) {
	synth := &fakeSynth{capability: tts.Capability{SupportsInstructions: true}}
	r := testRunner(synth, nil, nil, nil)

	st := testState(t, []Dialogue{{Speaker: "Ben", Text: "hello", Emotion: "excited", Speed: "fast"}})
	if _, err := r.Synthesize(context.Background(), st); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	req := synth.requests[0]
	if req.Voice != "v2" {
		t.Errorf("voice %q, want v2", req.Voice)
	}
	if req.Speed != 1.1 {
		t.Errorf("speed %v, want 1.1", req.Speed)
	}
	if req.Instructions != "Speak with energy." {
		t.Errorf("instructions %q", req.Instructions)
	}
}

func TestCombineClipsOrder(t *testing.T) {
	dir := t.TempDir()
	clips := filepath.Join(dir, "clips")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	// Written out of order on purpose.
	for _, n := range []int{2, 0, 10, 1} {
		name := fmt.Sprintf("%04d.mp3", n)
		if err := os.WriteFile(filepath.Join(clips, name), []byte(fmt.Sprintf("<%d>", n)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(dir, "audio", "ep.mp3")
	if err := CombineClips(clips, out); err != nil {
		t.Fatalf("CombineClips failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<0><1><2><10>" {
		t.Errorf("combined %q, want zero-padded lexical order", data)
	}
}

func TestCombineClipsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := CombineClips(dir, filepath.Join(dir, "out.mp3")); err == nil {
		t.Error("expected error for empty clips dir")
	}
}
