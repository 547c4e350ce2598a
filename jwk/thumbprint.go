package jwk

import (
	"crypto"
	"encoding/base64"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	jose "github.com/go-jose/go-jose/v3"
)

// Thumbprint returns base64url encoded RFC 7638 SHA-256 thumbprint of the key
func Thumbprint(k Key) (string, error) {
	jk, err := ToJOSE(k)
	if err != nil {
		return "", err
	}
	tb, err := jk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", errors.WithMessage(ErrInvalidKey, "unable to get thumbprint")
	}
	return base64.RawURLEncoding.EncodeToString(tb), nil
}

// ToJOSE returns *jose.JSONWebKey
func ToJOSE(k Key) (*jose.JSONWebKey, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	alg, use := meta(k)
	return &jose.JSONWebKey{
		Key:       pub,
		KeyID:     k.ID(),
		Algorithm: string(alg),
		Use:       string(use),
	}, nil
}

// FromJOSE returns Key from *jose.JSONWebKey.
// Private and symmetric keys are rejected.
func FromJOSE(jk *jose.JSONWebKey) (Key, error) {
	if jk == nil || jk.Key == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "empty key")
	}
	if !jk.IsPublic() {
		return nil, errors.WithMessage(ErrInvalidKey, "not a public key")
	}
	k, err := FromPublicKey(jk.Key)
	if err != nil {
		return nil, err
	}

	var alg jwa.Algorithm
	if jk.Algorithm != "" {
		alg, err = jwa.Parse(jk.Algorithm)
		if err != nil {
			return nil, errors.WithMessage(ErrInvalidKey, err.Error())
		}
	}
	use := Use(jk.Use)
	if use != "" && use != UseSig && use != UseEnc {
		return nil, errors.WithMessagef(ErrInvalidKey, "unsupported use: %q", jk.Use)
	}
	return WithMeta(k, alg, use, jk.KeyID), nil
}
