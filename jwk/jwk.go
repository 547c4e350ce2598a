package jwk

import (
	"bytes"
	"crypto"
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjws", "jwk")

// ErrInvalidKey is returned when JWK can not be decoded or converted
var ErrInvalidKey = errors.New("invalid JWK")

// KeyType is the "kty" parameter
type KeyType string

// Supported key types
const (
	KeyTypeEC  KeyType = "EC"
	KeyTypeRSA KeyType = "RSA"
)

// Curve is the "crv" parameter
type Curve string

// CurveP256 is NIST P-256
const CurveP256 Curve = "P-256"

// Use is the "use" parameter
type Use string

const (
	// UseSig specifies the key is used for signatures
	UseSig Use = "sig"
	// UseEnc specifies the key is used for encryption
	UseEnc Use = "enc"
)

// Key is a public JWK, one of *ECKey or *RSAKey
type Key interface {
	// Type returns the kty
	Type() KeyType
	// ID returns the kid, or empty string
	ID() string
	// PublicKey returns the native public key
	PublicKey() (crypto.PublicKey, error)

	isKey()
}

// ECKey is an elliptic curve public key
type ECKey struct {
	Curve Curve
	// X is the big-endian x coordinate
	X []byte
	// Y is the big-endian y coordinate
	Y []byte

	Algorithm jwa.Algorithm
	Use       Use
	KeyID     string
}

// RSAKey is an RSA public key
type RSAKey struct {
	// N is the big-endian modulus
	N []byte
	// E is the big-endian public exponent
	E []byte

	Algorithm jwa.Algorithm
	Use       Use
	KeyID     string
}

func (*ECKey) isKey()  {}
func (*RSAKey) isKey() {}

// Type returns KeyTypeEC
func (k *ECKey) Type() KeyType { return KeyTypeEC }

// ID returns the key ID
func (k *ECKey) ID() string { return k.KeyID }

// Type returns KeyTypeRSA
func (k *RSAKey) Type() KeyType { return KeyTypeRSA }

// ID returns the key ID
func (k *RSAKey) ID() string { return k.KeyID }

// wireKey is the JSON form
type wireKey struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`

	// accepted on input, never emitted
	KeyOps  []string `json:"key_ops,omitempty"`
	X5U     string   `json:"x5u,omitempty"`
	X5C     []string `json:"x5c,omitempty"`
	X5T     string   `json:"x5t,omitempty"`
	X5TS256 string   `json:"x5t#S256,omitempty"`
}

// members is the closed set of member names, matched case-sensitively.
// Private parameters are not listed, so they are rejected.
var members = map[string]bool{
	"kty": true, "crv": true, "x": true, "y": true, "n": true, "e": true,
	"alg": true, "use": true, "kid": true,
	"key_ops": true, "x5u": true, "x5c": true, "x5t": true, "x5t#S256": true,
}

// Parse decodes a single JWK
func Parse(data []byte) (Key, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		logger.KV(xlog.DEBUG, "reason", "decode", "err", err.Error())
		return nil, errors.WithMessage(ErrInvalidKey, err.Error())
	}
	if dec.More() {
		return nil, errors.WithMessage(ErrInvalidKey, "unexpected data after key")
	}
	for name := range raw {
		if !members[name] {
			logger.KV(xlog.DEBUG, "reason", "member", "name", name)
			return nil, errors.WithMessagef(ErrInvalidKey, "unknown member %q", name)
		}
	}

	var w wireKey
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.WithMessage(ErrInvalidKey, err.Error())
	}
	return w.toKey()
}

func (w *wireKey) toKey() (Key, error) {
	var alg jwa.Algorithm
	if w.Alg != "" {
		a, err := jwa.Parse(w.Alg)
		if err != nil {
			return nil, errors.WithMessage(ErrInvalidKey, err.Error())
		}
		alg = a
	}
	use := Use(w.Use)
	switch use {
	case "", UseSig, UseEnc:
	default:
		return nil, errors.WithMessagef(ErrInvalidKey, "unsupported use: %q", w.Use)
	}

	switch KeyType(w.Kty) {
	case KeyTypeEC:
		if w.N != "" || w.E != "" {
			return nil, errors.WithMessage(ErrInvalidKey, "RSA parameters in EC key")
		}
		if Curve(w.Crv) != CurveP256 {
			return nil, errors.WithMessagef(ErrInvalidKey, "unsupported curve: %q", w.Crv)
		}
		x, err := decodeParam("x", w.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeParam("y", w.Y)
		if err != nil {
			return nil, err
		}
		return &ECKey{
			Curve:     CurveP256,
			X:         x,
			Y:         y,
			Algorithm: alg,
			Use:       use,
			KeyID:     w.Kid,
		}, nil
	case KeyTypeRSA:
		if w.Crv != "" || w.X != "" || w.Y != "" {
			return nil, errors.WithMessage(ErrInvalidKey, "EC parameters in RSA key")
		}
		n, err := decodeParam("n", w.N)
		if err != nil {
			return nil, err
		}
		e, err := decodeParam("e", w.E)
		if err != nil {
			return nil, err
		}
		return &RSAKey{
			N:         n,
			E:         e,
			Algorithm: alg,
			Use:       use,
			KeyID:     w.Kid,
		}, nil
	default:
		return nil, errors.WithMessagef(ErrInvalidKey, "unsupported kty: %q", w.Kty)
	}
}

func decodeParam(name, val string) ([]byte, error) {
	if val == "" {
		return nil, errors.WithMessagef(ErrInvalidKey, "missing %q", name)
	}
	b, err := base64.RawURLEncoding.DecodeString(val)
	if err != nil {
		return nil, errors.WithMessagef(ErrInvalidKey, "invalid %q encoding", name)
	}
	return b, nil
}

func encodeParam(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// MarshalJSON implements json.Marshaler
func (k *ECKey) MarshalJSON() ([]byte, error) {
	if len(k.X) == 0 || len(k.Y) == 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "missing EC coordinates")
	}
	return json.Marshal(&wireKey{
		Kty: string(KeyTypeEC),
		Crv: string(k.Curve),
		X:   encodeParam(k.X),
		Y:   encodeParam(k.Y),
		Alg: string(k.Algorithm),
		Use: string(k.Use),
		Kid: k.KeyID,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (k *ECKey) UnmarshalJSON(data []byte) error {
	key, err := Parse(data)
	if err != nil {
		return err
	}
	ec, ok := key.(*ECKey)
	if !ok {
		return errors.WithMessagef(ErrInvalidKey, "expected EC key, got %s", key.Type())
	}
	*k = *ec
	return nil
}

// MarshalJSON implements json.Marshaler
func (k *RSAKey) MarshalJSON() ([]byte, error) {
	if len(k.N) == 0 || len(k.E) == 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "missing RSA parameters")
	}
	return json.Marshal(&wireKey{
		Kty: string(KeyTypeRSA),
		N:   encodeParam(k.N),
		E:   encodeParam(k.E),
		Alg: string(k.Algorithm),
		Use: string(k.Use),
		Kid: k.KeyID,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (k *RSAKey) UnmarshalJSON(data []byte) error {
	key, err := Parse(data)
	if err != nil {
		return err
	}
	rsa, ok := key.(*RSAKey)
	if !ok {
		return errors.WithMessagef(ErrInvalidKey, "expected RSA key, got %s", key.Type())
	}
	*k = *rsa
	return nil
}
