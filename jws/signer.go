package jws

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha256" // register SHA-256
	"crypto/x509"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/metricskey"
	"github.com/effective-security/xlog"
)

const (
	// RSAKeyBits is the size of generated RS256 keys
	RSAKeyBits = 3072
	// HS256KeySize is the size of generated HS256 secrets,
	// and the minimum accepted by NewHS256
	HS256KeySize = 32
)

// Signer produces signatures for one algorithm.
// The set of implementations is closed: *ES256Signer, *RS256Signer and *HS256Signer.
// Signers are immutable and safe for concurrent use.
type Signer interface {
	// Algorithm returns the signature algorithm
	Algorithm() jwa.Algorithm
	// Validator returns the validator paired with the signer
	Validator() (Validator, error)
	// PublicJWK returns public key in JWK form
	PublicJWK(kid string) (jwk.Key, error)
	// PrivateKeyDER exports the private key
	PrivateKeyDER() ([]byte, error)

	sign(input []byte) ([]byte, error)
}

// ES256Signer signs with ECDSA P-256 and SHA-256
type ES256Signer struct {
	key  crypto.Signer
	pub  *ecdsa.PublicKey
	hash crypto.Hash
}

// RS256Signer signs with RSASSA-PKCS1-v1_5 and SHA-256
type RS256Signer struct {
	key  crypto.Signer
	pub  *rsa.PublicKey
	hash crypto.Hash
}

// HS256Signer signs with HMAC SHA-256
type HS256Signer struct {
	key  []byte
	hash crypto.Hash
}

// Generate returns a signer with a new random key
func Generate(alg jwa.Algorithm) (Signer, error) {
	switch alg {
	case jwa.ES256:
		return GenerateES256()
	case jwa.RS256:
		return GenerateLegacyRS256()
	case jwa.HS256:
		return GenerateHS256()
	default:
		return nil, errors.WithMessagef(ErrUnsupportedAlgorithm, "%q", alg)
	}
}

// GenerateES256 returns a signer with a new P-256 key
func GenerateES256() (*ES256Signer, error) {
	defer metricskey.PerfKeyGeneration.MeasureSince(time.Now(), jwa.ES256.String())

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, providerError(err, "unable to generate ECDSA key")
	}
	return newES256(key)
}

// GenerateLegacyRS256 returns a signer with a new RSA key of RSAKeyBits.
// Prefer ES256 for new deployments.
func GenerateLegacyRS256() (*RS256Signer, error) {
	defer metricskey.PerfKeyGeneration.MeasureSince(time.Now(), jwa.RS256.String())

	key, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return nil, providerError(err, "unable to generate RSA key")
	}
	return newRS256(key)
}

// GenerateHS256 returns a signer with a new random secret
func GenerateHS256() (*HS256Signer, error) {
	defer metricskey.PerfKeyGeneration.MeasureSince(time.Now(), jwa.HS256.String())

	key := make([]byte, HS256KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, providerError(err, "unable to generate secret")
	}
	return NewHS256(key)
}

// NewHS256 returns HS256 signer for the shared secret
func NewHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < HS256KeySize {
		return nil, errors.WithMessagef(ErrProvider, "secret must be at least %d bytes", HS256KeySize)
	}
	return &HS256Signer{
		key:  append([]byte(nil), secret...),
		hash: crypto.SHA256,
	}, nil
}

// NewSigner returns ES256 or RS256 signer for the crypto.Signer,
// by the type of its public key.
// The key may be backed by HSM or KMS, in which case PrivateKeyDER is denied.
func NewSigner(s crypto.Signer) (Signer, error) {
	if s == nil {
		return nil, errors.WithMessage(ErrProvider, "signer is required")
	}
	switch s.Public().(type) {
	case *ecdsa.PublicKey:
		return newES256(s)
	case *rsa.PublicKey:
		return newRS256(s)
	default:
		return nil, errors.WithMessagef(ErrProvider, "public key not supported: %T", s.Public())
	}
}

func newES256(s crypto.Signer) (*ES256Signer, error) {
	pub, ok := s.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.WithMessagef(ErrProvider, "ES256 requires ECDSA key, got %T", s.Public())
	}
	if pub.Curve != elliptic.P256() {
		return nil, errors.WithMessagef(ErrProvider, "ES256 requires P-256 curve, got %s", pub.Curve.Params().Name)
	}
	return &ES256Signer{key: s, pub: pub, hash: crypto.SHA256}, nil
}

func newRS256(s crypto.Signer) (*RS256Signer, error) {
	pub, ok := s.Public().(*rsa.PublicKey)
	if !ok {
		return nil, errors.WithMessagef(ErrProvider, "RS256 requires RSA key, got %T", s.Public())
	}
	return &RS256Signer{key: s, pub: pub, hash: crypto.SHA256}, nil
}

// ImportDER returns a signer for DER encoded private key:
// SEC1 or PKCS#8 for ES256, PKCS#1 or PKCS#8 for RS256
func ImportDER(alg jwa.Algorithm, der []byte) (Signer, error) {
	switch alg {
	case jwa.ES256:
		return NewES256FromDER(der)
	case jwa.RS256:
		return NewRS256FromDER(der)
	case jwa.HS256:
		return nil, errors.WithMessage(ErrProvider, "HS256 key has no DER form")
	default:
		return nil, errors.WithMessagef(ErrUnsupportedAlgorithm, "%q", alg)
	}
}

// NewES256FromDER returns ES256 signer for SEC1 or PKCS#8 DER
func NewES256FromDER(der []byte) (*ES256Signer, error) {
	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		pk, err8 := x509.ParsePKCS8PrivateKey(der)
		if err8 != nil {
			logger.KV(xlog.DEBUG, "reason", "parse_der", "alg", jwa.ES256, "err", err.Error())
			return nil, providerError(err, "unable to parse ECDSA private key")
		}
		var ok bool
		if key, ok = pk.(*ecdsa.PrivateKey); !ok {
			return nil, errors.WithMessagef(ErrProvider, "ES256 requires ECDSA key, got %T", pk)
		}
	}
	return newES256(key)
}

// NewRS256FromDER returns RS256 signer for PKCS#1 or PKCS#8 DER
func NewRS256FromDER(der []byte) (*RS256Signer, error) {
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		pk, err8 := x509.ParsePKCS8PrivateKey(der)
		if err8 != nil {
			logger.KV(xlog.DEBUG, "reason", "parse_der", "alg", jwa.RS256, "err", err.Error())
			return nil, providerError(err, "unable to parse RSA private key")
		}
		var ok bool
		if key, ok = pk.(*rsa.PrivateKey); !ok {
			return nil, errors.WithMessagef(ErrProvider, "RS256 requires RSA key, got %T", pk)
		}
	}
	return newRS256(key)
}

// NewES256FromComponents returns ES256 signer for the raw big-endian
// public coordinates and private scalar.
func NewES256FromComponents(x, y, d []byte) (*ES256Signer, error) {
	if len(d) == 0 || len(d) > p256ScalarSize {
		return nil, errors.WithMessage(ErrProvider, "invalid private scalar size")
	}
	pub, err := (&jwk.ECKey{Curve: jwk.CurveP256, X: x, Y: y}).ECDSA()
	if err != nil {
		return nil, providerError(err, "invalid public point")
	}
	raw := make([]byte, p256ScalarSize)
	copy(raw[p256ScalarSize-len(d):], d)
	key, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), raw)
	if err != nil {
		return nil, providerError(err, "invalid private scalar")
	}
	if !key.PublicKey.Equal(pub) {
		return nil, errors.WithMessage(ErrProvider, "private scalar does not match the public point")
	}
	return newES256(key)
}

// Algorithm returns ES256
func (s *ES256Signer) Algorithm() jwa.Algorithm { return jwa.ES256 }

// Algorithm returns RS256
func (s *RS256Signer) Algorithm() jwa.Algorithm { return jwa.RS256 }

// Algorithm returns HS256
func (s *HS256Signer) Algorithm() jwa.Algorithm { return jwa.HS256 }

// Public returns the public key
func (s *ES256Signer) Public() crypto.PublicKey { return s.pub }

// Public returns the public key
func (s *RS256Signer) Public() crypto.PublicKey { return s.pub }

// Validator returns validator for the public key
func (s *ES256Signer) Validator() (Validator, error) {
	return &ES256Validator{key: s.pub, hash: s.hash}, nil
}

// Validator returns validator for the public key
func (s *RS256Signer) Validator() (Validator, error) {
	return &RS256Validator{key: s.pub, hash: s.hash}, nil
}

// Validator returns validator with the same secret
func (s *HS256Signer) Validator() (Validator, error) {
	return &HS256Validator{key: s.key, hash: s.hash}, nil
}

// PublicJWK returns EC public JWK
func (s *ES256Signer) PublicJWK(kid string) (jwk.Key, error) {
	k, err := jwk.NewECKey(s.pub)
	if err != nil {
		return nil, providerError(err, "unable to convert public key")
	}
	return jwk.WithMeta(k, jwa.ES256, jwk.UseSig, kid), nil
}

// PublicJWK returns RSA public JWK
func (s *RS256Signer) PublicJWK(kid string) (jwk.Key, error) {
	k, err := jwk.NewRSAKey(s.pub)
	if err != nil {
		return nil, providerError(err, "unable to convert public key")
	}
	return jwk.WithMeta(k, jwa.RS256, jwk.UseSig, kid), nil
}

// PublicJWK is denied for the symmetric key
func (s *HS256Signer) PublicJWK(string) (jwk.Key, error) {
	return nil, errors.WithMessage(ErrJwkPublicKeyDenied, "HS256 key has no public form")
}

// PrivateKeyDER returns SEC1 DER
func (s *ES256Signer) PrivateKeyDER() ([]byte, error) {
	key, ok := s.key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.WithMessagef(ErrPrivateKeyDenied, "key is not exportable: %T", s.key)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, providerError(err, "unable to marshal ECDSA key")
	}
	return der, nil
}

// PrivateKeyDER returns PKCS#1 DER
func (s *RS256Signer) PrivateKeyDER() ([]byte, error) {
	key, ok := s.key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.WithMessagef(ErrPrivateKeyDenied, "key is not exportable: %T", s.key)
	}
	return x509.MarshalPKCS1PrivateKey(key), nil
}

// PrivateKeyDER is denied for the symmetric key
func (s *HS256Signer) PrivateKeyDER() ([]byte, error) {
	return nil, errors.WithMessage(ErrPrivateKeyDenied, "HS256 key has no DER form")
}

func (s *ES256Signer) sign(input []byte) ([]byte, error) {
	h := s.hash.New()
	h.Write(input)
	der, err := s.key.Sign(rand.Reader, h.Sum(nil), s.hash)
	if err != nil {
		return nil, providerError(err, "unable to sign")
	}
	sig, err := fixedFromASN1(der, p256ScalarSize)
	if err != nil {
		return nil, providerError(err, "unexpected signature")
	}
	return sig, nil
}

func (s *RS256Signer) sign(input []byte) ([]byte, error) {
	h := s.hash.New()
	h.Write(input)
	sig, err := s.key.Sign(rand.Reader, h.Sum(nil), s.hash)
	if err != nil {
		return nil, providerError(err, "unable to sign")
	}
	return sig, nil
}

func (s *HS256Signer) sign(input []byte) ([]byte, error) {
	h := hmac.New(s.hash.New, s.key)
	h.Write(input)
	return h.Sum(nil), nil
}
