package cli

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjws/certutil"
	"github.com/effective-security/xjws/jws"
	"github.com/effective-security/xlog"
)

var pemPrefix = []byte("-----BEGIN ")

// loadSigner returns signer for PEM private key,
// or for base64url encoded HS256 secret
func (c *Cli) loadSigner(file string) (jws.Signer, error) {
	b, err := c.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(b, pemPrefix) {
		key, err := certutil.ParsePrivateKeyPEM(b)
		if err != nil {
			return nil, err
		}
		return jws.NewSigner(key)
	}

	secret, err := jws.DecodeSegment(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, errors.WithMessage(err, "key must be PEM or base64url encoded secret")
	}
	return jws.NewHS256(secret)
}

// loadPublicKey returns public key from PEM certificate, public or private key
func (c *Cli) loadPublicKey(file string) (crypto.PublicKey, error) {
	b, err := c.ReadFile(file)
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.Contains(b, []byte("-----BEGIN CERTIFICATE")):
		crt, err := certutil.ParseFromPEM(b)
		if err != nil {
			return nil, err
		}
		return crt.PublicKey, nil
	case bytes.Contains(b, []byte("-----BEGIN PUBLIC KEY")):
		der, err := certutil.GetKeyDERFromPEM(b)
		if err != nil {
			return nil, err
		}
		pub, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, errors.WithMessage(err, "unable to parse public key")
		}
		return pub, nil
	default:
		key, err := certutil.ParsePrivateKeyPEM(b)
		if err != nil {
			logger.KV(xlog.DEBUG, "reason", "parse_key", "file", file, "err", err.Error())
			return nil, err
		}
		return key.Public(), nil
	}
}
