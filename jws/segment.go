package jws

import (
	"encoding/base64"
	"strings"

	"github.com/cockroachdb/errors"
)

var segmentEncoding = base64.RawURLEncoding.Strict()

// EncodeSegment returns base64url encoding with padding stripped
func EncodeSegment(seg []byte) string {
	return base64.RawURLEncoding.EncodeToString(seg)
}

// DecodeSegment decodes base64url encoding without padding.
// Line breaks, padding and non-canonical trailing bits are rejected.
func DecodeSegment(seg string) ([]byte, error) {
	if strings.ContainsAny(seg, "\r\n") {
		return nil, errors.WithStack(ErrInvalidBase64)
	}
	b, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return nil, errors.WithStack(ErrInvalidBase64)
	}
	return b, nil
}
