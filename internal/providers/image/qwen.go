package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

// QwenOptions configures the DashScope-backed editor.
type QwenOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// QwenEditor performs image edits through the DashScope multimodal
// generation endpoint. The source image travels as a base64 data URI and the
// edited image comes back as a URL or data URI that is resolved to bytes
// before returning.
type QwenEditor struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

// NewQwenEditor constructs a DashScope editor with sane defaults.
func NewQwenEditor(opts QwenOptions) *QwenEditor {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "qwen-image-edit"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &QwenEditor{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      model,
	}
}

type qwenContent struct {
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

type qwenMessage struct {
	Role    string        `json:"role"`
	Content []qwenContent `json:"content"`
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Watermark bool `json:"watermark"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []map[string]string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Edit performs one edit exchange with DashScope.
func (c *QwenEditor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	if c.token == "" {
		return nil, domain.NewRemoteError(ProviderQwen, "image provider is not configured", errors.New("qwen: api key is missing"))
	}

	var payload qwenRequest
	payload.Model = c.model
	payload.Input.Messages = []qwenMessage{{
		Role: "user",
		Content: []qwenContent{
			{Image: dataURI(req.MIME, req.Data)},
			{Text: req.Prompt},
		},
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("qwen: marshal request: %w", err)
	}
	endpoint := c.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("qwen: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewRemoteError(ProviderQwen, "image provider is unreachable", err)
	}
	defer resp.Body.Close()

	var out qwenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, domain.NewRemoteError(ProviderQwen, "image provider request failed", fmt.Errorf("qwen: http %d", resp.StatusCode))
		}
		return nil, domain.NewRemoteError(ProviderQwen, "image provider returned an unreadable response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = fmt.Sprintf("image provider request failed (http %d)", resp.StatusCode)
		}
		return nil, domain.NewRemoteError(ProviderQwen, msg, fmt.Errorf("qwen: http %d code %s", resp.StatusCode, out.Code))
	}
	if len(out.Output.Choices) == 0 || len(out.Output.Choices[0].Message.Content) == 0 {
		return nil, domain.NewRemoteError(ProviderQwen, domain.ErrNoImage.Error(), domain.ErrNoImage)
	}
	ref := strings.TrimSpace(out.Output.Choices[0].Message.Content[0]["image"])
	if ref == "" {
		return nil, domain.NewRemoteError(ProviderQwen, domain.ErrNoImage.Error(), domain.ErrNoImage)
	}
	return c.resolveImage(ctx, ref)
}

// resolveImage turns the image reference from the response into raw bytes.
func (c *QwenEditor) resolveImage(ctx context.Context, ref string) (*EditResult, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("qwen: create download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewRemoteError(ProviderQwen, "failed to download edited image", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, domain.NewRemoteError(ProviderQwen, "failed to download edited image", fmt.Errorf("qwen: download http %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewRemoteError(ProviderQwen, "failed to download edited image", err)
	}
	if len(data) == 0 {
		return nil, domain.NewRemoteError(ProviderQwen, domain.ErrNoImage.Error(), domain.ErrNoImage)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return &EditResult{Data: data, MIME: mime}, nil
}

func dataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(uri string) (*EditResult, error) {
	rest := strings.TrimPrefix(uri, "data:")
	semi := strings.IndexByte(rest, ',')
	if semi < 0 {
		return nil, domain.NewRemoteError(ProviderQwen, domain.ErrNoImage.Error(), errors.New("qwen: malformed data uri"))
	}
	meta, encoded := rest[:semi], rest[semi+1:]
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, domain.NewRemoteError(ProviderQwen, domain.ErrNoImage.Error(), fmt.Errorf("qwen: decode data uri: %w", err))
	}
	return &EditResult{Data: data, MIME: mime}, nil
}

var _ Editor = (*QwenEditor)(nil)
