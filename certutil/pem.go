package certutil

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const certTimeFormat = "Jan 2 15:04:05 2006 GMT"

// ParseFromPEM returns Certificate parsed from PEM
func ParseFromPEM(b []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(b)
	if block == nil || block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
		return nil, errors.New("unable to parse PEM")
	}

	crt, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to parse certificate")
	}
	return crt, nil
}

// LoadChainFromPEM returns Certificates loaded from the file
func LoadChainFromPEM(certFile string) ([]*x509.Certificate, error) {
	b, err := os.ReadFile(certFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseChainFromPEM(b)
}

// ParseChainFromPEM returns Certificates parsed from PEM,
// in the order of the blocks. Blocks of other types are skipped.
func ParseChainFromPEM(chainPEM []byte) ([]*x509.Certificate, error) {
	var list []*x509.Certificate
	var block *pem.Block
	rest := bytes.TrimSpace(chainPEM)
	for len(rest) != 0 {
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("potentially malformed PEM")
		}
		if block.Type == "CERTIFICATE" {
			crt, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, errors.WithMessage(err, "failed to parse certificate")
			}
			list = append(list, crt)
		}
		rest = bytes.TrimSpace(rest)
	}
	if len(list) == 0 {
		return nil, errors.New("no certificates found")
	}
	return list, nil
}

// LoadPoolFromPEM returns CertPool with certificates loaded from the file
func LoadPoolFromPEM(certFile string) (*x509.CertPool, error) {
	certs, err := LoadChainFromPEM(certFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	for _, crt := range certs {
		pool.AddCert(crt)
	}
	return pool, nil
}

func encodeToPEM(out io.Writer, withComments bool, crt *x509.Certificate) error {
	if withComments {
		fmt.Fprintf(out, "#   Issuer: %s", crt.Issuer.String())
		fmt.Fprintf(out, "\n#   Subject: %s", crt.Subject.String())
		fmt.Fprint(out, "\n#   Validity")
		fmt.Fprintf(out, "\n#       Not Before: %s", crt.NotBefore.UTC().Format(certTimeFormat))
		fmt.Fprintf(out, "\n#       Not After : %s", crt.NotAfter.UTC().Format(certTimeFormat))
		fmt.Fprint(out, "\n")
	}

	err := pem.Encode(out, &pem.Block{Type: "CERTIFICATE", Bytes: crt.Raw})
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// EncodeToPEM converts certificates to PEM format, with optional comments
func EncodeToPEM(out io.Writer, withComments bool, certs ...*x509.Certificate) error {
	for _, crt := range certs {
		if crt != nil {
			if err := encodeToPEM(out, withComments, crt); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeToPEMString converts certificates to PEM format, with optional comments
func EncodeToPEMString(withComments bool, certs ...*x509.Certificate) (string, error) {
	if len(certs) == 0 || certs[0] == nil {
		return "", nil
	}

	b := bytes.NewBuffer([]byte{})
	if err := EncodeToPEM(b, withComments, certs...); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
