package tts

import (
	"context"
	"strings"
	"testing"
)

type stubSynth struct {
	name string
}

func (s *stubSynth) Synthesize(ctx context.Context, req Request) error { return nil }
func (s *stubSynth) Capability() Capability                            { return Capability{} }
func (s *stubSynth) Name() string                                      { return s.name }

func TestRegistryCachesClients(t *testing.T) {
	reg := NewRegistry()

	builds := 0
	reg.Register("stub", func(model string) (Synthesizer, error) {
		builds++
		return &stubSynth{name: "stub/" + model}, nil
	})

	a, err := reg.Synthesizer("stub", "m1")
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	b, err := reg.Synthesizer("stub", "m1")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if a != b {
		t.Error("same provider/model should return the cached instance")
	}
	if builds != 1 {
		t.Errorf("builder called %d times, want 1", builds)
	}

	if _, err := reg.Synthesizer("stub", "m2"); err != nil {
		t.Fatalf("different model lookup failed: %v", err)
	}
	if builds != 2 {
		t.Errorf("builder called %d times after new model, want 2", builds)
	}
}

func TestRegistryUnknownBackend(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Synthesizer("nope", "m")
	if err == nil {
		t.Fatal("expected error for unregistered backend")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Errorf("error = %q, want mention of missing configuration", err)
	}
}

func TestCapabilitySupportsDialect(t *testing.T) {
	c := Capability{Dialects: []string{"sichuan", "Cantonese"}}
	if !c.SupportsDialect("sichuan") {
		t.Error("exact match should be supported")
	}
	if !c.SupportsDialect("cantonese") {
		t.Error("dialect match should be case-insensitive")
	}
	if c.SupportsDialect("tianjin") {
		t.Error("unlisted dialect should not be supported")
	}
}
