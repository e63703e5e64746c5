package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrNoDataURLPrefix = errors.New("image is not a data URL: missing ',' separator")

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) >= 6 && (string(b[:6]) == "GIF87a" || string(b[:6]) == "GIF89a") {
		return "image/gif"
	}
	if len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP" {
		return "image/webp"
	}
	return "application/octet-stream"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// DecodeDataURL drops everything up to and including the first comma and
// base64-decodes the rest. Padded standard encoding is tried first, then the
// unpadded and URL-safe variants.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return nil, ErrNoDataURLPrefix
	}
	payload := strings.TrimSpace(s[idx+1:])
	if payload == "" {
		return nil, errors.New("empty base64 payload")
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return b, nil
	}
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b2, err2 := enc.DecodeString(payload); err2 == nil {
			return b2, nil
		}
	}
	return nil, err
}
