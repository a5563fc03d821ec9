package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// SyntheticEditor renders a deterministic placeholder derived from the source
// image and prompt. It stands in for a real provider in local and CI
// environments where no API key is configured, keeping the full request
// lifecycle exercised end-to-end.
type SyntheticEditor struct {
	Width  int
	Height int
}

// NewSyntheticEditor returns a placeholder editor producing 512x512 PNGs.
func NewSyntheticEditor() *SyntheticEditor {
	return &SyntheticEditor{Width: 512, Height: 512}
}

// Edit renders the placeholder. The context is honored so shutdown behaves
// like a real remote call.
func (s *SyntheticEditor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := syntheticSeed(req.Prompt, req.Data)
	data, err := renderSyntheticImage(s.Width, s.Height, seed)
	if err != nil {
		return nil, fmt.Errorf("synthetic: render: %w", err)
	}
	return &EditResult{Data: data, MIME: "image/png"}, nil
}

func syntheticSeed(prompt string, data []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(prompt))
	hasher.Write([]byte{'|'})
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))[:18]
}

func renderSyntheticImage(width, height int, seed string) ([]byte, error) {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripe := height / 8
	if stripe < 16 {
		stripe = 16
	}
	for y := 0; y < height; y += stripe * 2 {
		end := y + stripe
		if end > height {
			end = height
		}
		draw.Draw(img, image.Rect(0, y, width, end), &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "4a90d9"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

var _ Editor = (*SyntheticEditor)(nil)
