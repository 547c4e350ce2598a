package jws

import (
	"crypto"
	"crypto/x509"
	"net/url"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/metricskey"
	"github.com/effective-security/xlog"
)

// Header holds the message attributes that survive validation
type Header struct {
	KeyID       string `json:"kid,omitempty"`
	Type        string `json:"typ,omitempty"`
	ContentType string `json:"cty,omitempty"`
}

// Message is the payload to be signed, with its header attributes
type Message struct {
	Header  Header
	Payload []byte
}

// Option configures Message
type Option func(*Header)

// WithKeyID sets kid
func WithKeyID(kid string) Option {
	return func(h *Header) { h.KeyID = kid }
}

// WithType sets typ
func WithType(typ string) Option {
	return func(h *Header) { h.Type = typ }
}

// WithContentType sets cty
func WithContentType(cty string) Option {
	return func(h *Header) { h.ContentType = cty }
}

// NewMessage returns Message for the payload
func NewMessage(payload []byte, opts ...Option) *Message {
	m := &Message{
		Payload: clone(payload),
	}
	for _, opt := range opts {
		opt(&m.Header)
	}
	return m
}

type signOptions struct {
	jku       *url.URL
	jwk       jwk.Key
	publicJWK bool
	x5c       []*x509.Certificate
}

// SignOption adds a member to the protected header
type SignOption func(*signOptions)

// WithJKU sets jku
func WithJKU(u *url.URL) SignOption {
	return func(o *signOptions) { o.jku = u }
}

// WithJWK embeds the key as jwk
func WithJWK(k jwk.Key) SignOption {
	return func(o *signOptions) { o.jwk = k }
}

// WithPublicJWK embeds the signer's public key as jwk
func WithPublicJWK() SignOption {
	return func(o *signOptions) { o.publicJWK = true }
}

// WithX5C embeds the certificate chain, leaf first.
// The leaf must hold the signer's public key.
func WithX5C(chain []*x509.Certificate) SignOption {
	return func(o *signOptions) { o.x5c = chain }
}

// Sign returns the signed compact object
func (m *Message) Sign(s Signer, opts ...SignOption) (*Compact, error) {
	if s == nil {
		return nil, errors.WithMessage(ErrProvider, "signer is required")
	}
	alg := s.Algorithm()
	defer metricskey.PerfJWSOperation.MeasureSince(time.Now(), alg.String(), "sign")

	o := new(signOptions)
	for _, opt := range opts {
		opt(o)
	}

	hdr := &ProtectedHeader{
		Algorithm:   alg,
		KeyID:       m.Header.KeyID,
		Type:        m.Header.Type,
		ContentType: m.Header.ContentType,
		X5C:         slices.Clone(o.x5c),
	}
	if o.jku != nil {
		u := *o.jku
		hdr.JKU = &u
	}
	if o.jwk != nil {
		hdr.JWK = jwk.Clone(o.jwk)
	}
	if o.publicJWK {
		k, err := s.PublicJWK("")
		if err != nil {
			return nil, err
		}
		hdr.JWK = k
	}
	if len(o.x5c) > 0 {
		if err := checkLeaf(s, o.x5c[0]); err != nil {
			return nil, err
		}
	}

	hb, err := hdr.MarshalJSON()
	if err != nil {
		return nil, err
	}
	signInput := EncodeSegment(hb) + "." + EncodeSegment(m.Payload)

	sig, err := s.sign([]byte(signInput))
	if err != nil {
		logger.KV(xlog.ERROR, "reason", "sign", "alg", alg, "err", err.Error())
		return nil, err
	}

	return &Compact{
		header:    hdr,
		payload:   clone(m.Payload),
		signInput: signInput,
		signature: sig,
	}, nil
}

func checkLeaf(s Signer, leaf *x509.Certificate) error {
	type publicKey interface {
		Equal(x crypto.PublicKey) bool
	}
	pub, ok := leaf.PublicKey.(publicKey)
	if !ok {
		return errors.WithMessagef(ErrX5cPublicKeyDenied, "unsupported leaf key: %T", leaf.PublicKey)
	}

	var signerPub crypto.PublicKey
	switch typ := s.(type) {
	case *ES256Signer:
		signerPub = typ.pub
	case *RS256Signer:
		signerPub = typ.pub
	default:
		return errors.WithMessagef(ErrX5cPublicKeyDenied, "x5c is not supported with %s", s.Algorithm())
	}
	if !pub.Equal(signerPub) {
		return errors.WithMessage(ErrX5cPublicKeyDenied, "leaf certificate does not match the signer")
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return append([]byte{}, b...)
}
