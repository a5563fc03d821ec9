package image

import (
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestSyntheticEditIsDeterministic(t *testing.T) {
	editor := NewSyntheticEditor()
	req := EditRequest{Data: []byte("source"), MIME: "image/png", Prompt: "make it blue"}

	first, err := editor.Edit(context.Background(), req)
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	second, err := editor.Edit(context.Background(), req)
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatalf("same inputs must render the same placeholder")
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(first.Data))
	if err != nil {
		t.Fatalf("placeholder is not a decodable png: %v", err)
	}
	if cfg.Width != 512 || cfg.Height != 512 {
		t.Fatalf("placeholder size = %dx%d, want 512x512", cfg.Width, cfg.Height)
	}
}

func TestSyntheticEditVariesWithPrompt(t *testing.T) {
	editor := NewSyntheticEditor()
	a, _ := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), Prompt: "blue"})
	b, _ := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), Prompt: "red"})
	if bytes.Equal(a.Data, b.Data) {
		t.Fatalf("different prompts should render different placeholders")
	}
}

func TestSyntheticEditHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSyntheticEditor().Edit(ctx, EditRequest{Data: []byte("source"), Prompt: "x"}); err == nil {
		t.Fatalf("expected context error")
	}
}
