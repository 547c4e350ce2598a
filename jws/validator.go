package jws

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/x509"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xjws/jwk"
)

// RSAMinSignatureSize is the minimum RS256 signature size accepted by validation
const RSAMinSignatureSize = 256

// Validator verifies signatures for one algorithm.
// The set of implementations is closed: *ES256Validator, *RS256Validator and *HS256Validator.
type Validator interface {
	// Algorithm returns the signature algorithm
	Algorithm() jwa.Algorithm

	verify(input, sig []byte) error
}

// ES256Validator verifies ES256 signatures
type ES256Validator struct {
	key  *ecdsa.PublicKey
	hash crypto.Hash
}

// RS256Validator verifies RS256 signatures
type RS256Validator struct {
	key  *rsa.PublicKey
	hash crypto.Hash
}

// HS256Validator verifies HS256 signatures
type HS256Validator struct {
	key  []byte
	hash crypto.Hash
}

// NewValidator returns validator for ECDSA P-256 or RSA public key
func NewValidator(pub crypto.PublicKey) (Validator, error) {
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		if key == nil || key.Curve != elliptic.P256() {
			return nil, errors.WithMessage(ErrProvider, "ES256 requires P-256 key")
		}
		return &ES256Validator{key: key, hash: crypto.SHA256}, nil
	case *rsa.PublicKey:
		if key == nil || key.N == nil {
			return nil, errors.WithMessage(ErrProvider, "invalid RSA key")
		}
		return &RS256Validator{key: key, hash: crypto.SHA256}, nil
	default:
		return nil, errors.WithMessagef(ErrProvider, "public key not supported: %T", pub)
	}
}

// NewValidatorFromJWK returns validator for the public JWK
func NewValidatorFromJWK(k jwk.Key) (Validator, error) {
	if k == nil {
		return nil, errors.WithMessage(ErrProvider, "JWK is required")
	}
	pub, err := k.PublicKey()
	if err != nil {
		return nil, providerError(err, "unable to load JWK")
	}
	return NewValidator(pub)
}

// NewValidatorFromCertificate returns validator for the certificate public key
func NewValidatorFromCertificate(crt *x509.Certificate) (Validator, error) {
	if crt == nil {
		return nil, errors.WithMessage(ErrProvider, "certificate is required")
	}
	return NewValidator(crt.PublicKey)
}

// Algorithm returns ES256
func (v *ES256Validator) Algorithm() jwa.Algorithm { return jwa.ES256 }

// Algorithm returns RS256
func (v *RS256Validator) Algorithm() jwa.Algorithm { return jwa.RS256 }

// Algorithm returns HS256
func (v *HS256Validator) Algorithm() jwa.Algorithm { return jwa.HS256 }

// PublicKey returns the public key
func (v *ES256Validator) PublicKey() *ecdsa.PublicKey { return v.key }

// PublicKey returns the public key
func (v *RS256Validator) PublicKey() *rsa.PublicKey { return v.key }

// PublicJWK returns the public key in JWK form
func (v *ES256Validator) PublicJWK(kid string) (jwk.Key, error) {
	k, err := jwk.NewECKey(v.key)
	if err != nil {
		return nil, providerError(err, "unable to convert public key")
	}
	return jwk.WithMeta(k, jwa.ES256, jwk.UseSig, kid), nil
}

// PublicJWK returns the public key in JWK form
func (v *RS256Validator) PublicJWK(kid string) (jwk.Key, error) {
	k, err := jwk.NewRSAKey(v.key)
	if err != nil {
		return nil, providerError(err, "unable to convert public key")
	}
	return jwk.WithMeta(k, jwa.RS256, jwk.UseSig, kid), nil
}

func (v *ES256Validator) verify(input, sig []byte) error {
	if v == nil || v.key == nil {
		return errors.WithMessage(ErrProvider, "validator is not initialized")
	}
	if len(sig) != ES256SignatureSize {
		return errors.WithMessagef(ErrInvalidSignature, "expected %d bytes, got %d", ES256SignatureSize, len(sig))
	}
	der, err := asn1FromFixed(sig)
	if err != nil {
		return providerError(err, "unable to encode signature")
	}
	h := v.hash.New()
	h.Write(input)
	if !ecdsa.VerifyASN1(v.key, h.Sum(nil), der) {
		return errors.WithStack(ErrInvalidSignature)
	}
	return nil
}

func (v *RS256Validator) verify(input, sig []byte) error {
	if v == nil || v.key == nil {
		return errors.WithMessage(ErrProvider, "validator is not initialized")
	}
	if len(sig) < RSAMinSignatureSize {
		return errors.WithMessagef(ErrInvalidSignature, "expected at least %d bytes, got %d", RSAMinSignatureSize, len(sig))
	}
	h := v.hash.New()
	h.Write(input)
	if err := rsa.VerifyPKCS1v15(v.key, v.hash, h.Sum(nil), sig); err != nil {
		return errors.WithStack(ErrInvalidSignature)
	}
	return nil
}

func (v *HS256Validator) verify(input, sig []byte) error {
	if v == nil || len(v.key) == 0 {
		return errors.WithMessage(ErrProvider, "validator is not initialized")
	}
	h := hmac.New(v.hash.New, v.key)
	h.Write(input)
	if !hmac.Equal(h.Sum(nil), sig) {
		return errors.WithStack(ErrInvalidSignature)
	}
	return nil
}
