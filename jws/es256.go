package jws

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// p256ScalarSize is the size of r and s in ES256 signature
const p256ScalarSize = 32

// ES256SignatureSize is the size of ES256 signature in JWS form
const ES256SignatureSize = 2 * p256ScalarSize

// fixedFromASN1 converts ASN.1 ECDSA-Sig-Value into r||s,
// each left-padded with zeros to size bytes.
func fixedFromASN1(sig []byte, size int) ([]byte, error) {
	var (
		r, s  = &big.Int{}, &big.Int{}
		inner cryptobyte.String
	)
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, errors.New("unable to decode ECDSA signature")
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > size*8 || s.BitLen() > size*8 {
		return nil, errors.New("ECDSA signature is out of range")
	}

	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])
	return out, nil
}

// asn1FromFixed converts r||s into ASN.1 ECDSA-Sig-Value
func asn1FromFixed(sig []byte) ([]byte, error) {
	if len(sig)%2 != 0 {
		return nil, errors.New("invalid signature size")
	}
	size := len(sig) / 2
	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}
