package jws

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/metricskey"
	"github.com/effective-security/xlog"
)

// Compact is a signed JWS object in compact serialization.
// It is produced by Message.Sign or Parse, and is immutable.
type Compact struct {
	header  *ProtectedHeader
	payload []byte
	// signInput is the text covered by the signature,
	// exactly as signed or received
	signInput string
	signature []byte
}

// Parse returns Compact from "header.payload.signature" text.
// The signature is not verified, use Validate.
func Parse(s string) (*Compact, error) {
	if n := strings.Count(s, ".") + 1; n != 3 {
		return nil, errors.WithMessagef(ErrInvalidCompactFormat, "expected 3 segments, got %d", n)
	}
	parts := strings.SplitN(s, ".", 3)

	hb, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, errors.WithMessage(err, "header")
	}
	hdr, err := ParseHeader(hb)
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "header", "err", err.Error())
		return nil, err
	}
	payload, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, errors.WithMessage(err, "payload")
	}
	sig, err := DecodeSegment(parts[2])
	if err != nil {
		return nil, errors.WithMessage(err, "signature")
	}

	return &Compact{
		header:    hdr,
		payload:   payload,
		signInput: s[:len(parts[0])+1+len(parts[1])],
		signature: sig,
	}, nil
}

// String returns the compact serialization.
// The header and payload segments are emitted exactly as signed or parsed.
func (c *Compact) String() string {
	return c.signInput + "." + EncodeSegment(c.signature)
}

// Reencode returns the compact serialization with the header
// encoded from its typed form. The result differs from String when
// the received header used another member order or extra members,
// and its signature will not verify in that case.
func (c *Compact) Reencode() (string, error) {
	hb, err := c.header.MarshalJSON()
	if err != nil {
		return "", err
	}
	return EncodeSegment(hb) + "." + EncodeSegment(c.payload) + "." + EncodeSegment(c.signature), nil
}

// Validate verifies the signature and returns the message.
// The validator must be of the same algorithm as the header alg.
func (c *Compact) Validate(v Validator) (*Message, error) {
	if c == nil || c.header == nil {
		return nil, errors.WithMessage(ErrInvalidCompactFormat, "not initialized")
	}
	alg := c.header.Algorithm
	defer metricskey.PerfJWSOperation.MeasureSince(time.Now(), alg.String(), "validate")

	var err error
	switch typ := v.(type) {
	case *ES256Validator:
		if alg != jwa.ES256 {
			return nil, mismatch(alg, jwa.ES256)
		}
		err = typ.verify([]byte(c.signInput), c.signature)
	case *RS256Validator:
		if alg != jwa.RS256 {
			return nil, mismatch(alg, jwa.RS256)
		}
		err = typ.verify([]byte(c.signInput), c.signature)
	case *HS256Validator:
		if alg != jwa.HS256 {
			return nil, mismatch(alg, jwa.HS256)
		}
		err = typ.verify([]byte(c.signInput), c.signature)
	default:
		return nil, errors.WithMessagef(ErrValidatorAlgMismatch, "unsupported validator %T for %s", v, alg)
	}
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "validate", "alg", alg, "kid", c.header.KeyID, "err", err.Error())
		return nil, err
	}

	return &Message{
		Header: Header{
			KeyID:       c.header.KeyID,
			Type:        c.header.Type,
			ContentType: c.header.ContentType,
		},
		Payload: clone(c.payload),
	}, nil
}

func mismatch(alg, validator jwa.Algorithm) error {
	logger.KV(xlog.WARNING, "reason", "alg_mismatch", "alg", alg, "validator", validator)
	return errors.WithMessagef(ErrValidatorAlgMismatch, "%s validator for %s token", validator, alg)
}

// Algorithm returns the header alg
func (c *Compact) Algorithm() jwa.Algorithm {
	return c.header.Algorithm
}

// KeyID returns the header kid, or empty string
func (c *Compact) KeyID() string {
	return c.header.KeyID
}

// JKU returns the header jku, or nil
func (c *Compact) JKU() *url.URL {
	if c.header.JKU == nil {
		return nil
	}
	u := *c.header.JKU
	return &u
}

// JWK returns a copy of the header jwk, or nil
func (c *Compact) JWK() jwk.Key {
	if c.header.JWK == nil {
		return nil
	}
	return jwk.Clone(c.header.JWK)
}

// Header returns a copy of the protected header.
// Certificates in X5C are shared and must not be modified.
func (c *Compact) Header() ProtectedHeader {
	h := *c.header
	h.JKU = c.JKU()
	h.JWK = c.JWK()
	h.Critical = slices.Clone(c.header.Critical)
	h.X5C = slices.Clone(c.header.X5C)
	return h
}

// SignInput returns the bytes covered by the signature
func (c *Compact) SignInput() []byte {
	return []byte(c.signInput)
}

// Signature returns the signature bytes
func (c *Compact) Signature() []byte {
	return clone(c.signature)
}

// UnverifiedPayload returns the payload without checking the signature
func (c *Compact) UnverifiedPayload() []byte {
	return clone(c.payload)
}
