package jws

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjws", "jws")

// ProtectedHeader is the JOSE header covered by the signature
type ProtectedHeader struct {
	Algorithm jwa.Algorithm
	// JKU is carried as is, the URL is never fetched
	JKU         *url.URL
	JWK         jwk.Key
	KeyID       string
	Critical    []string
	Type        string
	ContentType string
	// X5C is the certificate chain, leaf first
	X5C []*x509.Certificate
}

// wireHeader defines the member order on output
type wireHeader struct {
	Alg  jwa.Algorithm `json:"alg"`
	JKU  string        `json:"jku,omitempty"`
	JWK  jwk.Key       `json:"jwk,omitempty"`
	Kid  string        `json:"kid,omitempty"`
	Crit []string      `json:"crit,omitempty"`
	Typ  string        `json:"typ,omitempty"`
	Cty  string        `json:"cty,omitempty"`
	X5C  []string      `json:"x5c,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (h *ProtectedHeader) MarshalJSON() ([]byte, error) {
	w := wireHeader{
		Alg:  h.Algorithm,
		JWK:  h.JWK,
		Kid:  h.KeyID,
		Crit: h.Critical,
		Typ:  h.Type,
		Cty:  h.ContentType,
	}
	if h.JKU != nil {
		w.JKU = h.JKU.String()
	}
	for _, crt := range h.X5C {
		w.X5C = append(w.X5C, base64.StdEncoding.EncodeToString(crt.Raw))
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Mark(errors.WithStack(err), ErrInvalidHeaderFormat)
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (h *ProtectedHeader) UnmarshalJSON(b []byte) error {
	hdr, err := ParseHeader(b)
	if err != nil {
		return err
	}
	*h = *hdr
	return nil
}

// ParseHeader decodes the protected header JSON.
// A non-empty crit is rejected before any other member is interpreted.
func ParseHeader(b []byte) (*ProtectedHeader, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil || members == nil {
		return nil, errors.WithMessage(ErrInvalidHeaderFormat, "header is not a JSON object")
	}

	h := new(ProtectedHeader)
	if raw, ok := members["crit"]; ok {
		var crit []json.RawMessage
		if err := json.Unmarshal(raw, &crit); err != nil {
			return nil, errors.WithMessage(ErrInvalidHeaderFormat, "crit must be an array")
		}
		if len(crit) > 0 {
			logger.KV(xlog.DEBUG, "reason", "crit", "count", len(crit))
			return nil, errors.WithStack(ErrCriticalExtension)
		}
	}

	alg, err := stringMember(members, "alg")
	if err != nil {
		return nil, err
	}
	if alg == "" {
		return nil, errors.WithMessage(ErrInvalidHeaderFormat, "alg is required")
	}
	h.Algorithm, err = jwa.Parse(alg)
	if err != nil {
		return nil, errors.WithMessagef(ErrInvalidHeaderFormat, "unsupported alg: %q", alg)
	}

	jku, err := stringMember(members, "jku")
	if err != nil {
		return nil, err
	}
	if jku != "" {
		u, err := url.Parse(jku)
		if err != nil || !u.IsAbs() {
			return nil, errors.WithMessage(ErrInvalidHeaderFormat, "jku must be an absolute URL")
		}
		h.JKU = u
	}

	if raw, ok := members["jwk"]; ok && !isNull(raw) {
		k, err := jwk.Parse(raw)
		if err != nil {
			logger.KV(xlog.DEBUG, "reason", "jwk", "err", err.Error())
			return nil, errors.WithMessagef(ErrInvalidHeaderFormat, "jwk: %s", err.Error())
		}
		h.JWK = k
	}

	if h.KeyID, err = stringMember(members, "kid"); err != nil {
		return nil, err
	}
	if h.Type, err = stringMember(members, "typ"); err != nil {
		return nil, err
	}
	if h.ContentType, err = stringMember(members, "cty"); err != nil {
		return nil, err
	}

	if raw, ok := members["x5c"]; ok && !isNull(raw) {
		h.X5C, err = parseX5C(raw)
		if err != nil {
			return nil, err
		}
	}
	// x5u, x5t and x5t#S256 are accepted and dropped with the other unknown members
	return h, nil
}

func parseX5C(raw json.RawMessage) ([]*x509.Certificate, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.WithMessage(ErrInvalidHeaderFormat, "x5c must be an array of strings")
	}
	if len(list) == 0 {
		return nil, errors.WithMessage(ErrInvalidHeaderFormat, "x5c is empty")
	}
	chain := make([]*x509.Certificate, 0, len(list))
	for i, s := range list {
		der, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.WithMessagef(ErrInvalidHeaderFormat, "x5c[%d]: invalid base64", i)
		}
		crt, err := x509.ParseCertificate(der)
		if err != nil {
			logger.KV(xlog.DEBUG, "reason", "x5c", "index", i, "err", err.Error())
			return nil, errors.WithMessagef(ErrInvalidHeaderFormat, "x5c[%d]: invalid certificate", i)
		}
		chain = append(chain, crt)
	}
	return chain, nil
}

// stringMember returns empty string for absent or null member
func stringMember(members map[string]json.RawMessage, name string) (string, error) {
	raw, ok := members[name]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.WithMessagef(ErrInvalidHeaderFormat, "%s must be a string", name)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
