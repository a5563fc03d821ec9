package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/domain"
)

func qwenImageResponse(ref string) qwenResponse {
	var resp qwenResponse
	resp.Output.Choices = make([]struct {
		Message struct {
			Content []map[string]string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Output.Choices[0].Message.Content = []map[string]string{{"image": ref}}
	return resp
}

func TestQwenEditSendsDataURIAndDecodesResult(t *testing.T) {
	edited := []byte("edited-bytes")
	resultURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(edited)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload qwenRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Model != "qwen-image-edit" {
			t.Fatalf("unexpected model: %s", payload.Model)
		}
		if len(payload.Input.Messages) != 1 || len(payload.Input.Messages[0].Content) != 2 {
			t.Fatalf("unexpected message shape: %+v", payload.Input.Messages)
		}
		img := payload.Input.Messages[0].Content[0].Image
		if !strings.HasPrefix(img, "data:image/png;base64,") {
			t.Fatalf("source image must travel as a data uri, got %q", img)
		}
		if payload.Input.Messages[0].Content[1].Text != "make it blue" {
			t.Fatalf("instruction mismatch: %q", payload.Input.Messages[0].Content[1].Text)
		}
		_ = json.NewEncoder(w).Encode(qwenImageResponse(resultURI))
	}))
	defer ts.Close()

	editor := NewQwenEditor(QwenOptions{APIKey: "test-key", BaseURL: ts.URL})
	got, err := editor.Edit(context.Background(), EditRequest{
		Data:   []byte("source"),
		MIME:   "image/png",
		Prompt: "make it blue",
	})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if string(got.Data) != "edited-bytes" || got.MIME != "image/jpeg" {
		t.Fatalf("unexpected result: mime=%s data=%q", got.MIME, got.Data)
	}
}

func TestQwenEditDownloadsResultURL(t *testing.T) {
	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/services/aigc/multimodal-generation/generation", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(qwenImageResponse(ts.URL + "/out.png"))
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("downloaded"))
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	editor := NewQwenEditor(QwenOptions{APIKey: "test-key", BaseURL: ts.URL})
	got, err := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), MIME: "image/png", Prompt: "x"})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if string(got.Data) != "downloaded" || got.MIME != "image/png" {
		t.Fatalf("unexpected result: mime=%s data=%q", got.MIME, got.Data)
	}
}

func TestQwenEditRejectionCarriesProviderMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "DataInspectionFailed", "message": "unsafe content"})
	}))
	defer ts.Close()

	editor := NewQwenEditor(QwenOptions{APIKey: "test-key", BaseURL: ts.URL})
	_, err := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), MIME: "image/png", Prompt: "x"})

	var remote *domain.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("want RemoteError, got %v", err)
	}
	if remote.Message != "unsafe content" {
		t.Fatalf("message = %q, want provider message", remote.Message)
	}
}

func TestQwenEditEmptyResponseIsNoImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(qwenResponse{})
	}))
	defer ts.Close()

	editor := NewQwenEditor(QwenOptions{APIKey: "test-key", BaseURL: ts.URL})
	_, err := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), MIME: "image/png", Prompt: "x"})
	if !errors.Is(err, domain.ErrNoImage) {
		t.Fatalf("want ErrNoImage, got %v", err)
	}
}

func TestQwenEditMissingKey(t *testing.T) {
	editor := NewQwenEditor(QwenOptions{})
	if _, err := editor.Edit(context.Background(), EditRequest{Data: []byte("source"), MIME: "image/png", Prompt: "x"}); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}
