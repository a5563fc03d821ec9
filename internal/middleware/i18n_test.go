package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeFor(t *testing.T, lookup CountryLookup, configure func(*http.Request)) string {
	t.Helper()
	var got string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	if configure != nil {
		configure(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestDetectLocaleOrder(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*http.Request)
		lookup    CountryLookup
		want      string
	}{
		{
			name:      "x-locale wins",
			configure: func(r *http.Request) { r.Header.Set("X-Locale", "id"); r.Header.Set("Accept-Language", "en-US") },
			want:      "id",
		},
		{
			name:      "accept-language full value",
			configure: func(r *http.Request) { r.Header.Set("Accept-Language", "id-ID,id;q=0.9,en;q=0.8") },
			want:      "id",
		},
		{
			name:      "accept-language unsupported falls back",
			configure: func(r *http.Request) { r.Header.Set("Accept-Language", "fr-FR") },
			want:      "en",
		},
		{
			name:   "geoip country id",
			lookup: func(ip string) (string, error) { return "ID", nil },
			want:   "id",
		},
		{
			name:   "geoip country other",
			lookup: func(ip string) (string, error) { return "DE", nil },
			want:   "en",
		},
		{
			name:   "lookup failure uses default",
			lookup: func(ip string) (string, error) { return "", errors.New("unavailable") },
			want:   "en",
		},
		{
			name: "no signal uses default",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := localeFor(t, tc.lookup, tc.configure); got != tc.want {
				t.Fatalf("locale = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCountryHeaderHint(t *testing.T) {
	var got string
	handler := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "ID" {
		t.Fatalf("country = %q, want ID", got)
	}
}

func TestLocaleFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := LocaleFromContext(req.Context()); got != "en" {
		t.Fatalf("LocaleFromContext without middleware = %q, want en", got)
	}
}
