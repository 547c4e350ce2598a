package jws

import (
	"bytes"
	"crypto/x509"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// X5COptions specifies how the x5c chain is verified
type X5COptions struct {
	// Roots is the set of trust anchors.
	// When nil, the chain is only checked to be internally consistent:
	// every certificate is signed by the next one, and a single certificate
	// must be self-signed.
	Roots *x509.CertPool
	// CurrentTime for validity checks, if zero then time.Now is used
	CurrentTime time.Time
}

// X5C returns the verified leaf certificate of x5c chain,
// or nil if the header has no x5c.
func (c *Compact) X5C(opts X5COptions) (*x509.Certificate, error) {
	chain := c.header.X5C
	if len(chain) == 0 {
		return nil, nil
	}

	var err error
	if opts.Roots != nil {
		err = verifyChain(chain, opts)
	} else {
		err = verifyConsistency(chain, opts.CurrentTime)
	}
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "x5c", "subject", chain[0].Subject.String(), "err", err.Error())
		return nil, errors.WithMessage(ErrX5cPublicKeyDenied, err.Error())
	}
	return chain[0], nil
}

// X5CValidator returns validator for the verified x5c leaf
func (c *Compact) X5CValidator(opts X5COptions) (Validator, error) {
	leaf, err := c.X5C(opts)
	if err != nil {
		return nil, err
	}
	if leaf == nil {
		return nil, errors.WithMessage(ErrX5cPublicKeyDenied, "x5c is not present")
	}
	v, err := NewValidatorFromCertificate(leaf)
	if err != nil {
		return nil, errors.WithMessage(ErrX5cPublicKeyDenied, err.Error())
	}
	return v, nil
}

func verifyChain(chain []*x509.Certificate, opts X5COptions) error {
	intermediates := x509.NewCertPool()
	for _, crt := range chain[1:] {
		intermediates.AddCert(crt)
	}
	_, err := chain[0].Verify(x509.VerifyOptions{
		Roots:         opts.Roots,
		Intermediates: intermediates,
		CurrentTime:   opts.CurrentTime,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	return err
}

func verifyConsistency(chain []*x509.Certificate, now time.Time) error {
	if now.IsZero() {
		now = time.Now()
	}
	for i, crt := range chain {
		if now.Before(crt.NotBefore) || now.After(crt.NotAfter) {
			return errors.Errorf("certificate %d is not valid at %s", i, now.UTC().Format(time.RFC3339))
		}
		if i+1 < len(chain) {
			parent := chain[i+1]
			if !bytes.Equal(crt.RawIssuer, parent.RawSubject) {
				return errors.Errorf("certificate %d is not issued by the next certificate", i)
			}
			if err := crt.CheckSignatureFrom(parent); err != nil {
				return errors.WithMessagef(err, "certificate %d", i)
			}
		}
	}
	if len(chain) == 1 {
		crt := chain[0]
		if !bytes.Equal(crt.RawIssuer, crt.RawSubject) {
			return errors.New("single certificate must be self-signed")
		}
		if err := crt.CheckSignature(crt.SignatureAlgorithm, crt.RawTBSCertificate, crt.Signature); err != nil {
			return errors.WithMessage(err, "single certificate must be self-signed")
		}
	}
	return nil
}
