package cli

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/certutil"
	"github.com/effective-security/xjws/jws"
)

// SignCmd signs the payload
type SignCmd struct {
	Key      string `help:"PEM private key, or file with base64url HS256 secret" required:""`
	In       string `help:"payload file, - for stdin" default:"-"`
	Out      string `help:"output file, if not set the token is printed" type:"path"`
	Kid      string `help:"key ID"`
	Typ      string `help:"type header"`
	Cty      string `help:"content type header"`
	EmbedJwk bool   `name:"embed-jwk" help:"embed the public key in the header"`
	X5c      string `name:"x5c" help:"PEM file with the certificate chain to embed, leaf first"`
	Jku      string `help:"URL of the JWK set"`
}

// Run the command
func (a *SignCmd) Run(ctx *Cli) error {
	signer, err := ctx.loadSigner(a.Key)
	if err != nil {
		return err
	}
	payload, err := ctx.ReadFile(a.In)
	if err != nil {
		return err
	}

	var opts []jws.SignOption
	if a.EmbedJwk {
		opts = append(opts, jws.WithPublicJWK())
	}
	if a.X5c != "" {
		chain, err := certutil.LoadChainFromPEM(a.X5c)
		if err != nil {
			return err
		}
		opts = append(opts, jws.WithX5C(chain))
	}
	if a.Jku != "" {
		u, err := url.Parse(a.Jku)
		if err != nil || !u.IsAbs() {
			return errors.Errorf("invalid jku: %s", a.Jku)
		}
		opts = append(opts, jws.WithJKU(u))
	}

	msg := jws.NewMessage(payload,
		jws.WithKeyID(a.Kid),
		jws.WithType(a.Typ),
		jws.WithContentType(a.Cty),
	)
	c, err := msg.Sign(signer, opts...)
	if err != nil {
		return err
	}
	return ctx.WriteFile(a.Out, []byte(c.String()+"\n"), 0644)
}
