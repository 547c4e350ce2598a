package cli

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/certutil"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/jws"
	"github.com/effective-security/xlog"
)

// VerifyCmd validates the token
type VerifyCmd struct {
	Token    string `help:"token file, - for stdin" default:"-"`
	Jwk      string `help:"file with public JWK" xor:"source"`
	Jwks     string `help:"JWK set file, JSON or YAML; the key is selected by kid" xor:"source"`
	Cert     string `help:"PEM certificate, or public key" xor:"source"`
	Key      string `help:"PEM private key, or file with base64url HS256 secret" xor:"source"`
	Embedded bool   `help:"use the key embedded in jwk header" xor:"source"`
	X5c      bool   `name:"x5c" help:"use the leaf of x5c header" xor:"source"`
	Roots    string `help:"PEM file with trusted roots for x5c"`
	Time     string `help:"time to check x5c validity, RFC3339"`
}

// VerifyResult is printed on success
type VerifyResult struct {
	Algorithm   string `json:"alg"`
	KeyID       string `json:"kid,omitempty"`
	Type        string `json:"typ,omitempty"`
	ContentType string `json:"cty,omitempty"`
	Payload     string `json:"payload"`
}

// Run the command
func (a *VerifyCmd) Run(ctx *Cli) error {
	b, err := ctx.ReadFile(a.Token)
	if err != nil {
		return err
	}
	c, err := jws.Parse(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}

	v, err := a.validator(ctx, c)
	if err != nil {
		return err
	}

	m, err := c.Validate(v)
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "validate", "kid", c.KeyID(), "err", err.Error())
		return err
	}

	ctx.WriteJSON(&VerifyResult{
		Algorithm:   c.Algorithm().String(),
		KeyID:       m.Header.KeyID,
		Type:        m.Header.Type,
		ContentType: m.Header.ContentType,
		Payload:     string(m.Payload),
	})
	return nil
}

func (a *VerifyCmd) validator(ctx *Cli, c *jws.Compact) (jws.Validator, error) {
	switch {
	case a.Jwk != "":
		raw, err := ctx.ReadFile(a.Jwk)
		if err != nil {
			return nil, err
		}
		k, err := jwk.Parse(raw)
		if err != nil {
			return nil, err
		}
		return jws.NewValidatorFromJWK(k)
	case a.Jwks != "":
		set, err := jwk.LoadKeySet(a.Jwks)
		if err != nil {
			return nil, err
		}
		k, err := set.Find(c.KeyID())
		if err != nil {
			return nil, err
		}
		return jws.NewValidatorFromJWK(k)
	case a.Cert != "":
		pub, err := ctx.loadPublicKey(a.Cert)
		if err != nil {
			return nil, err
		}
		return jws.NewValidator(pub)
	case a.Key != "":
		s, err := ctx.loadSigner(a.Key)
		if err != nil {
			return nil, err
		}
		return s.Validator()
	case a.Embedded:
		if c.JWK() == nil {
			return nil, errors.New("token has no jwk header")
		}
		return jws.NewValidatorFromJWK(c.JWK())
	case a.X5c:
		opts := jws.X5COptions{}
		if a.Roots != "" {
			pool, err := certutil.LoadPoolFromPEM(a.Roots)
			if err != nil {
				return nil, err
			}
			opts.Roots = pool
		}
		if a.Time != "" {
			t, err := time.Parse(time.RFC3339, a.Time)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid time")
			}
			opts.CurrentTime = t
		}
		return c.X5CValidator(opts)
	default:
		return nil, errors.New("one of --jwk, --jwks, --cert, --key, --embedded or --x5c is required")
	}
}
