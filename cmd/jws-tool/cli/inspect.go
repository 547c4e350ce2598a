package cli

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/certutil"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/jws"
)

// InspectCmd prints the token header without validation
type InspectCmd struct {
	Token string `help:"token file, - for stdin" default:"-"`
	Pem   bool   `help:"include x5c certificates in PEM format"`
}

// InspectResult is printed by inspect
type InspectResult struct {
	Algorithm   string         `json:"alg"`
	KeyID       string         `json:"kid,omitempty"`
	Type        string         `json:"typ,omitempty"`
	ContentType string         `json:"cty,omitempty"`
	JKU         string         `json:"jku,omitempty"`
	JWK         map[string]any `json:"jwk,omitempty"`
	Thumbprint  string         `json:"jwk_thumbprint,omitempty"`
	X5C         []string       `json:"x5c,omitempty"`
	X5CPEM      string         `json:"x5c_pem,omitempty"`
	Payload     string         `json:"payload,omitempty"`
	PayloadSize int            `json:"payload_size"`
}

// Run the command
func (a *InspectCmd) Run(ctx *Cli) error {
	b, err := ctx.ReadFile(a.Token)
	if err != nil {
		return err
	}
	c, err := jws.Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}

	h := c.Header()
	res := &InspectResult{
		Algorithm:   h.Algorithm.String(),
		KeyID:       h.KeyID,
		Type:        h.Type,
		ContentType: h.ContentType,
	}
	if h.JKU != nil {
		res.JKU = h.JKU.String()
	}
	if h.JWK != nil {
		raw, err := json.Marshal(h.JWK)
		if err != nil {
			return errors.WithStack(err)
		}
		if err = json.Unmarshal(raw, &res.JWK); err != nil {
			return errors.WithStack(err)
		}
		if res.Thumbprint, err = jwk.Thumbprint(h.JWK); err != nil {
			return err
		}
	}
	for _, crt := range h.X5C {
		res.X5C = append(res.X5C, crt.Subject.String())
	}
	if a.Pem && len(h.X5C) > 0 {
		if res.X5CPEM, err = certutil.EncodeToPEMString(true, h.X5C...); err != nil {
			return err
		}
	}

	payload := c.UnverifiedPayload()
	res.PayloadSize = len(payload)
	if utf8.Valid(payload) {
		res.Payload = string(payload)
	}
	ctx.WriteJSON(res)
	return nil
}
