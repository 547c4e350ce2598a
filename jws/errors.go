package jws

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
)

// Errors returned by the package, check with errors.Is
var (
	// ErrInvalidCompactFormat is returned when the token does not have 3 segments
	ErrInvalidCompactFormat = errors.New("invalid compact format")
	// ErrInvalidBase64 is returned when a segment is not base64url
	ErrInvalidBase64 = errors.New("invalid base64")
	// ErrInvalidHeaderFormat is returned for malformed protected header
	ErrInvalidHeaderFormat = errors.New("invalid header format")
	// ErrInvalidSignature is returned when the signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrCriticalExtension is returned when the header has non-empty crit
	ErrCriticalExtension = errors.New("critical extension is not supported")
	// ErrValidatorAlgMismatch is returned when validator does not match header alg
	ErrValidatorAlgMismatch = errors.New("validator algorithm mismatch")
	// ErrX5cPublicKeyDenied is returned when x5c chain fails verification
	ErrX5cPublicKeyDenied = errors.New("x5c public key denied")
	// ErrPrivateKeyDenied is returned when private key can not be exported
	ErrPrivateKeyDenied = errors.New("private key export denied")
	// ErrJwkPublicKeyDenied is returned when the key has no public JWK form
	ErrJwkPublicKeyDenied = errors.New("JWK public key denied")
	// ErrProvider is returned for failures of the underlying crypto operations
	ErrProvider = errors.New("crypto provider failure")
	// ErrUnsupportedAlgorithm is returned for algorithms outside of the supported set
	ErrUnsupportedAlgorithm = jwa.ErrUnsupported
)

func providerError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrProvider)
}
