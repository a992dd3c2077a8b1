package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	rgxDataURL = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

	ErrInvalidDataURL = errors.New("invalid image data format, expected base64 data URL")
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// DataURL is a decoded data:<mime>;base64,<data> string.
type DataURL struct {
	MimeType string
	Data     []byte
}

// ParseDataURL splits a base64 data URL into its mime type and bytes.
func ParseDataURL(s string) (DataURL, error) {
	matches := rgxDataURL.FindStringSubmatch(s)
	if len(matches) != 3 {
		return DataURL{}, ErrInvalidDataURL
	}

	data, err := decodeBase64(matches[2])
	if err != nil {
		return DataURL{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	return DataURL{MimeType: matches[1], Data: data}, nil
}

// decodeBase64 accepts padded or unpadded payloads in either the standard or
// the URL-safe alphabet.
func decodeBase64(s string) ([]byte, error) {
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		var data []byte
		if data, err = enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, err
}

// GenerateReportID hashes the current time together with 16 random bytes and
// keeps the first 16 hex characters.
func GenerateReportID() string {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("read random bytes: %v", err))
	}

	combined := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(randomBytes))
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])[:16]
}
