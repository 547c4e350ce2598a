package cli

import (
	"crypto/rand"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/certutil"
	"github.com/effective-security/xjws/jwa"
	"github.com/effective-security/xjws/jwk"
	"github.com/effective-security/xjws/jws"
)

// KeyCmd provides key commands
type KeyCmd struct {
	Generate KeyGenerateCmd `cmd:"" help:"generate signing key"`
	Jwk      KeyJwkCmd      `cmd:"" help:"print public key in JWK format"`
	Info     KeyInfoCmd     `cmd:"" help:"print key info"`
}

// KeyGenerateCmd generates a key
type KeyGenerateCmd struct {
	Alg string `help:"algorithm: ES256|RS256|HS256" default:"ES256" enum:"ES256,RS256,HS256"`
	Out string `help:"output file, if not set the key is printed" type:"path"`
	Pub string `help:"output file for PEM public key" type:"path"`
}

// Run the command
func (a *KeyGenerateCmd) Run(ctx *Cli) error {
	alg, err := jwa.Parse(a.Alg)
	if err != nil {
		return err
	}

	var out []byte
	if alg == jwa.HS256 {
		if a.Pub != "" {
			return errors.WithMessage(jws.ErrJwkPublicKeyDenied, "HS256 key has no public form")
		}
		secret := make([]byte, jws.HS256KeySize)
		if _, err = rand.Read(secret); err != nil {
			return errors.WithStack(err)
		}
		out = []byte(jws.EncodeSegment(secret) + "\n")
	} else {
		s, err := jws.Generate(alg)
		if err != nil {
			return err
		}
		der, err := s.PrivateKeyDER()
		if err != nil {
			return err
		}
		key, err := certutil.ParsePrivateKeyDER(der)
		if err != nil {
			return err
		}
		if out, err = certutil.EncodePrivateKeyToPEM(key); err != nil {
			return err
		}
		if a.Pub != "" {
			pub, err := certutil.EncodePublicKeyToPEM(key.Public())
			if err != nil {
				return err
			}
			if err = ctx.WriteFile(a.Pub, pub, 0644); err != nil {
				return err
			}
		}
	}
	return ctx.WriteFile(a.Out, out, 0600)
}

// KeyJwkCmd prints public JWK
type KeyJwkCmd struct {
	Key        string `help:"PEM file with private key, public key or certificate" required:""`
	Kid        string `help:"key ID"`
	Thumbprint bool   `help:"use RFC 7638 thumbprint as key ID"`
}

// Run the command
func (a *KeyJwkCmd) Run(ctx *Cli) error {
	pub, err := ctx.loadPublicKey(a.Key)
	if err != nil {
		return err
	}
	v, err := jws.NewValidator(pub)
	if err != nil {
		return err
	}

	var k jwk.Key
	switch typ := v.(type) {
	case *jws.ES256Validator:
		k, err = typ.PublicJWK(a.Kid)
	case *jws.RS256Validator:
		k, err = typ.PublicJWK(a.Kid)
	default:
		err = errors.WithStack(jws.ErrJwkPublicKeyDenied)
	}
	if err != nil {
		return err
	}

	if a.Thumbprint {
		tp, err := jwk.Thumbprint(k)
		if err != nil {
			return err
		}
		k = jwk.WithMeta(k, v.Algorithm(), jwk.UseSig, tp)
	}

	b, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return ctx.WriteFile("", append(b, '\n'), 0)
}

// KeyInfoCmd prints key info
type KeyInfoCmd struct {
	Key string `help:"PEM file with private key, public key or certificate" required:""`
}

// Run the command
func (a *KeyInfoCmd) Run(ctx *Cli) error {
	pub, err := ctx.loadPublicKey(a.Key)
	if err != nil {
		return err
	}
	ki, err := certutil.NewKeyInfo(pub)
	if err != nil {
		return err
	}
	ctx.WriteJSON(ki)
	return nil
}
