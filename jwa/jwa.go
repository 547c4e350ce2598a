package jwa

import (
	"crypto"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Algorithm is a JWS signature algorithm identifier
type Algorithm string

const (
	// ES256 is ECDSA using P-256 and SHA-256
	ES256 Algorithm = "ES256"
	// RS256 is RSASSA-PKCS1-v1_5 using SHA-256
	RS256 Algorithm = "RS256"
	// HS256 is HMAC using SHA-256
	HS256 Algorithm = "HS256"
)

// Family identifies the key type an algorithm operates on
type Family int

const (
	// FamilyUnknown is returned for unsupported algorithms
	FamilyUnknown Family = iota
	// FamilyEC is elliptic curve
	FamilyEC
	// FamilyRSA is RSA
	FamilyRSA
	// FamilyHMAC is a shared secret
	FamilyHMAC
)

// ErrUnsupported is returned for an algorithm outside of the supported set
var ErrUnsupported = errors.New("unsupported algorithm")

// Algorithms returns the supported algorithms
func Algorithms() []Algorithm {
	return []Algorithm{ES256, RS256, HS256}
}

// Parse returns Algorithm for the identifier
func Parse(s string) (Algorithm, error) {
	a := Algorithm(s)
	if !a.IsValid() {
		return "", errors.WithMessagef(ErrUnsupported, "%q", s)
	}
	return a, nil
}

// IsValid returns true if the algorithm is supported
func (a Algorithm) IsValid() bool {
	return a.Family() != FamilyUnknown
}

// Family returns the key family of the algorithm
func (a Algorithm) Family() Family {
	switch a {
	case ES256:
		return FamilyEC
	case RS256:
		return FamilyRSA
	case HS256:
		return FamilyHMAC
	default:
		return FamilyUnknown
	}
}

// Hash returns the digest algorithm
func (a Algorithm) Hash() crypto.Hash {
	switch a {
	case ES256, RS256, HS256:
		return crypto.SHA256
	default:
		return 0
	}
}

// String returns the identifier
func (a Algorithm) String() string {
	return string(a)
}

// MarshalJSON implements json.Marshaler
func (a Algorithm) MarshalJSON() ([]byte, error) {
	if !a.IsValid() {
		return nil, errors.WithMessagef(ErrUnsupported, "%q", string(a))
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Algorithm) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.WithMessage(err, "algorithm must be a string")
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
