package handlers

import (
	"errors"

	"server/internal/domain"
)

// validation and lifecycle messages by locale; provider messages pass through
// untranslated because they originate from the capability itself.
var localizedMessages = map[string]map[string]string{
	"en": {
		"no_source_image":   "select an image first",
		"blank_prompt":      "describe the edit you want",
		"in_flight":         "an edit is already running",
		"image_too_large":   "the image is too large",
		"unsupported_image": "only image files are supported",
		"no_image":          "no image returned",
		"not_found":         "session not found or expired",
		"generic":           "image generation failed, please try again",
	},
	"id": {
		"no_source_image":   "pilih gambar terlebih dahulu",
		"blank_prompt":      "jelaskan perubahan yang diinginkan",
		"in_flight":         "proses edit masih berjalan",
		"image_too_large":   "ukuran gambar terlalu besar",
		"unsupported_image": "hanya berkas gambar yang didukung",
		"no_image":          "tidak ada gambar yang dihasilkan",
		"not_found":         "sesi tidak ditemukan atau kedaluwarsa",
		"generic":           "pembuatan gambar gagal, silakan coba lagi",
	},
}

func localize(locale, key string) string {
	if m, ok := localizedMessages[locale]; ok {
		if msg, ok := m[key]; ok {
			return msg
		}
	}
	return localizedMessages["en"][key]
}

// localizeError renders err as a short user-facing message in the given
// locale. Remote provider messages are shown verbatim.
func localizeError(err error, locale string) string {
	switch {
	case errors.Is(err, domain.ErrNoSourceImage):
		return localize(locale, "no_source_image")
	case errors.Is(err, domain.ErrBlankPrompt):
		return localize(locale, "blank_prompt")
	case errors.Is(err, domain.ErrGenerationInFlight):
		return localize(locale, "in_flight")
	case errors.Is(err, domain.ErrImageTooLarge):
		return localize(locale, "image_too_large")
	case errors.Is(err, domain.ErrUnsupportedImage):
		return localize(locale, "unsupported_image")
	case errors.Is(err, domain.ErrSessionNotFound):
		return localize(locale, "not_found")
	}
	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if errors.Is(err, domain.ErrNoImage) {
		return localize(locale, "no_image")
	}
	return localize(locale, "generic")
}
