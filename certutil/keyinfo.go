package certutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
)

// KeyInfo provides information about the key
type KeyInfo struct {
	Type      string        `json:"type"`
	KeySize   int           `json:"size"`
	IsPrivate bool          `json:"private"`
	Curve     string        `json:"curve,omitempty"`
	Algorithm jwa.Algorithm `json:"alg,omitempty"`
}

// NewKeyInfo returns *KeyInfo for a private, public or crypto.Signer key.
// Algorithm is set when the key can be used for JWS signing.
func NewKeyInfo(k any) (*KeyInfo, error) {
	ki := &KeyInfo{}
	var pub crypto.PublicKey

	switch typ := k.(type) {
	case *rsa.PrivateKey:
		ki.IsPrivate = true
		pub = &typ.PublicKey
	case *ecdsa.PrivateKey:
		ki.IsPrivate = true
		pub = &typ.PublicKey
	case crypto.Signer:
		ki.IsPrivate = true
		pub = typ.Public()
	default:
		pub = k
	}

	switch typ := pub.(type) {
	case *rsa.PublicKey:
		ki.Type = "RSA"
		ki.KeySize = typ.N.BitLen()
		if ki.KeySize >= 2048 {
			ki.Algorithm = jwa.RS256
		}
	case *ecdsa.PublicKey:
		ki.Type = "ECDSA"
		ki.KeySize = typ.Curve.Params().BitSize
		ki.Curve = typ.Curve.Params().Name
		if typ.Curve == elliptic.P256() {
			ki.Algorithm = jwa.ES256
		}
	default:
		return nil, errors.Errorf("key not supported: %T", pub)
	}
	return ki, nil
}
