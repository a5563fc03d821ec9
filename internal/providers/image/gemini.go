package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"server/internal/domain"
)

const defaultGeminiModel = "gemini-2.5-flash-image-preview"

// GeminiOptions configures the Gemini-backed editor.
type GeminiOptions struct {
	APIKey string
	Model  string
}

// GeminiEditor performs image edits through the Gemini API: the source image
// travels as an inline blob next to the instruction text, and the first
// inline image part of the response is the edited image.
type GeminiEditor struct {
	client *genai.Client
	model  string
}

// NewGeminiEditor constructs the editor and its underlying API client.
func NewGeminiEditor(ctx context.Context, opts GeminiOptions) (*GeminiEditor, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiEditor{client: client, model: model}, nil
}

// Edit submits the image and instruction in a single generateContent exchange.
func (g *GeminiEditor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		{InlineData: &genai.Blob{MIMEType: req.MIME, Data: req.Data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, domain.NewRemoteError(ProviderGemini, geminiMessage(err), err)
	}
	return extractInlineImage(resp)
}

// extractInlineImage scans the candidates for an inline image payload. A
// response that resolved but carries no image, text-only refusals included,
// collapses into the single no-image failure path with the model's words
// attached when it said anything.
func extractInlineImage(resp *genai.GenerateContentResponse) (*EditResult, error) {
	var refusal string
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					mime := part.InlineData.MIMEType
					if mime == "" {
						mime = "image/png"
					}
					return &EditResult{Data: part.InlineData.Data, MIME: mime}, nil
				}
				if refusal == "" && strings.TrimSpace(part.Text) != "" {
					refusal = strings.TrimSpace(part.Text)
				}
			}
		}
	}
	message := domain.ErrNoImage.Error()
	if refusal != "" {
		message = fmt.Sprintf("%s: %s", message, refusal)
	}
	return nil, domain.NewRemoteError(ProviderGemini, message, domain.ErrNoImage)
}

// geminiMessage pulls the API's own message out of an error when present so
// the user sees the provider's wording instead of transport noise.
func geminiMessage(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "image provider request failed"
}
