package jwk

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
)

const (
	// P256CoordinateSize is the size of P-256 coordinates in bytes
	P256CoordinateSize = 32
	// RSAModulusSize is the minimum size of the exported modulus in bytes,
	// shorter moduli are left-padded with zeros
	RSAModulusSize = 384
	// RSAExponentSize is the minimum size of the exported exponent in bytes
	RSAExponentSize = 3
)

// NewECKey returns JWK for P-256 public key,
// the coordinates are exported as fixed 32 bytes values
func NewECKey(pub *ecdsa.PublicKey) (*ECKey, error) {
	if pub == nil || pub.Curve != elliptic.P256() {
		return nil, errors.WithMessage(ErrInvalidKey, "only P-256 keys are supported")
	}
	raw, err := pub.Bytes()
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidKey, err.Error())
	}
	// uncompressed point: 0x04 || x || y
	if len(raw) != 1+2*P256CoordinateSize {
		return nil, errors.WithMessage(ErrInvalidKey, "unexpected point encoding")
	}
	return &ECKey{
		Curve: CurveP256,
		X:     raw[1 : 1+P256CoordinateSize],
		Y:     raw[1+P256CoordinateSize:],
	}, nil
}

// NewRSAKey returns JWK for RSA public key.
// The modulus is padded to RSAModulusSize and the exponent to RSAExponentSize.
func NewRSAKey(pub *rsa.PublicKey) (*RSAKey, error) {
	if pub == nil || pub.N == nil || pub.N.Sign() <= 0 || pub.E < 2 {
		return nil, errors.WithMessage(ErrInvalidKey, "invalid RSA public key")
	}
	return &RSAKey{
		N: padded(pub.N, RSAModulusSize),
		E: padded(big.NewInt(int64(pub.E)), RSAExponentSize),
	}, nil
}

func padded(v *big.Int, size int) []byte {
	if n := (v.BitLen() + 7) / 8; n > size {
		size = n
	}
	return v.FillBytes(make([]byte, size))
}

// FromPublicKey returns JWK for the public key
func FromPublicKey(pub crypto.PublicKey) (Key, error) {
	switch typ := pub.(type) {
	case *ecdsa.PublicKey:
		k, err := NewECKey(typ)
		if err != nil {
			return nil, err
		}
		return k, nil
	case *rsa.PublicKey:
		k, err := NewRSAKey(typ)
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, errors.WithMessagef(ErrInvalidKey, "public key not supported: %T", typ)
	}
}

// PublicKey returns *ecdsa.PublicKey
func (k *ECKey) PublicKey() (crypto.PublicKey, error) {
	return k.ECDSA()
}

// ECDSA returns the public key, verifying the point is on the curve
func (k *ECKey) ECDSA() (*ecdsa.PublicKey, error) {
	if k.Curve != CurveP256 {
		return nil, errors.WithMessagef(ErrInvalidKey, "unsupported curve: %q", k.Curve)
	}
	if len(k.X) == 0 || len(k.Y) == 0 ||
		len(k.X) > P256CoordinateSize || len(k.Y) > P256CoordinateSize {
		return nil, errors.WithMessage(ErrInvalidKey, "invalid EC coordinates size")
	}

	raw := make([]byte, 1+2*P256CoordinateSize)
	raw[0] = 4
	copy(raw[1+P256CoordinateSize-len(k.X):1+P256CoordinateSize], k.X)
	copy(raw[1+2*P256CoordinateSize-len(k.Y):], k.Y)

	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), raw)
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidKey, "point is not on P-256")
	}
	return pub, nil
}

// PublicKey returns *rsa.PublicKey
func (k *RSAKey) PublicKey() (crypto.PublicKey, error) {
	return k.RSA()
}

// RSA returns the public key
func (k *RSAKey) RSA() (*rsa.PublicKey, error) {
	n := new(big.Int).SetBytes(k.N)
	if n.Sign() <= 0 {
		return nil, errors.WithMessage(ErrInvalidKey, "invalid RSA modulus")
	}
	e := new(big.Int).SetBytes(k.E)
	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return nil, errors.WithMessage(ErrInvalidKey, "invalid RSA exponent")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// WithMeta returns a copy of the key with alg, use and kid set
func WithMeta(k Key, alg jwa.Algorithm, use Use, kid string) Key {
	switch typ := k.(type) {
	case *ECKey:
		c := *typ
		c.Algorithm, c.Use, c.KeyID = alg, use, kid
		return &c
	case *RSAKey:
		c := *typ
		c.Algorithm, c.Use, c.KeyID = alg, use, kid
		return &c
	default:
		return k
	}
}

// Clone returns a deep copy of the key
func Clone(k Key) Key {
	switch typ := k.(type) {
	case *ECKey:
		if typ == nil {
			return k
		}
		c := *typ
		c.X = bytes.Clone(typ.X)
		c.Y = bytes.Clone(typ.Y)
		return &c
	case *RSAKey:
		if typ == nil {
			return k
		}
		c := *typ
		c.N = bytes.Clone(typ.N)
		c.E = bytes.Clone(typ.E)
		return &c
	default:
		return k
	}
}

func meta(k Key) (jwa.Algorithm, Use) {
	switch typ := k.(type) {
	case *ECKey:
		return typ.Algorithm, typ.Use
	case *RSAKey:
		return typ.Algorithm, typ.Use
	default:
		return "", ""
	}
}
