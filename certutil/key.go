package certutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/cockroachdb/errors"
)

// EncodePrivateKeyToPEM returns PEM encoded private key:
// PKCS#1 for RSA, SEC1 for ECDSA
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) ([]byte, error) {
	var block *pem.Block
	switch key := priv.(type) {
	case *rsa.PrivateKey:
		block = &pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		}
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		block = &pem.Block{
			Type:  "EC PRIVATE KEY",
			Bytes: der,
		}
	default:
		return nil, errors.Errorf("unsupported key: %T", priv)
	}
	return pem.EncodeToMemory(block), nil
}

// EncodePublicKeyToPEM returns PEM encoded public key
func EncodePublicKeyToPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	b := bytes.NewBuffer([]byte{})
	err = pem.Encode(b, &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b.Bytes(), nil
}

// ParsePrivateKeyPEM parses and returns a PEM-encoded private
// key. The private key may be either an unencrypted PKCS#8, PKCS#1,
// or elliptic private key.
func ParsePrivateKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	der, err := GetKeyDERFromPEM(keyPEM)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyDER(der)
}

// GetKeyDERFromPEM parses a PEM-encoded private key and returns DER-format key bytes.
func GetKeyDERFromPEM(in []byte) ([]byte, error) {
	// openssl includes EC PARAMETERS by default
	var block *pem.Block
	for {
		block, in = pem.Decode(in)
		if block == nil || block.Type != "EC PARAMETERS" {
			break
		}
	}
	if block == nil {
		return nil, errors.New("unable to decode private key")
	}
	if _, ok := block.Headers["Proc-Type"]; ok {
		return nil, errors.New("encrypted private key is not supported")
	}
	return block.Bytes, nil
}

// ParsePrivateKeyDER parses a PKCS #1, PKCS #8 or SEC1 DER-encoded
// RSA or ECDSA private key. The key must not be in PEM format.
func ParsePrivateKeyDER(keyDER []byte) (crypto.Signer, error) {
	generalKey, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		generalKey, err = x509.ParsePKCS1PrivateKey(keyDER)
		if err != nil {
			generalKey, err = x509.ParseECPrivateKey(keyDER)
			if err != nil {
				// the cause is not included to avoid leaking key details
				return nil, errors.New("unable to parse private key")
			}
		}
	}

	switch key := generalKey.(type) {
	case *rsa.PrivateKey:
		return key, nil
	case *ecdsa.PrivateKey:
		return key, nil
	}
	return nil, errors.Errorf("unsupported key: %T", generalKey)
}
