package certutil_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/effective-security/xjws/certutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeChain(t *testing.T) []*x509.Certificate {
	rootKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	root := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, root, root, &rootKey.PublicKey, rootKey)
	require.NoError(t, err)
	rootCrt, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	leaf := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "leaf"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err = x509.CreateCertificate(rand.Reader, leaf, rootCrt, &leafKey.PublicKey, rootKey)
	require.NoError(t, err)
	leafCrt, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return []*x509.Certificate{leafCrt, rootCrt}
}

func TestChainPEM(t *testing.T) {
	chain := makeChain(t)

	s, err := certutil.EncodeToPEMString(false, chain...)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(s, "-----BEGIN CERTIFICATE-----"))

	parsed, err := certutil.ParseChainFromPEM([]byte(s))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, chain[0].Raw, parsed[0].Raw)
	assert.Equal(t, chain[1].Raw, parsed[1].Raw)

	crt, err := certutil.ParseFromPEM([]byte(s))
	require.NoError(t, err)
	assert.Equal(t, "leaf", crt.Subject.CommonName)

	withComments, err := certutil.EncodeToPEMString(true, chain...)
	require.NoError(t, err)
	assert.Contains(t, withComments, "#   Subject: CN=leaf")
	assert.Contains(t, withComments, "#   Issuer: CN=root")

	// comments are skipped by the parser
	parsed, err = certutil.ParseChainFromPEM([]byte(withComments))
	require.NoError(t, err)
	assert.Len(t, parsed, 2)

	s, err = certutil.EncodeToPEMString(false)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestLoadChainFromPEM(t *testing.T) {
	chain := makeChain(t)
	s, err := certutil.EncodeToPEMString(true, chain...)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "chain.pem")
	require.NoError(t, os.WriteFile(file, []byte(s), 0644))

	list, err := certutil.LoadChainFromPEM(file)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	pool, err := certutil.LoadPoolFromPEM(file)
	require.NoError(t, err)
	_, err = chain[0].Verify(x509.VerifyOptions{Roots: pool})
	assert.NoError(t, err)

	_, err = certutil.LoadChainFromPEM(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
	_, err = certutil.LoadPoolFromPEM(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func TestParsePEM_Invalid(t *testing.T) {
	_, err := certutil.ParseFromPEM([]byte("not PEM"))
	assert.EqualError(t, err, "unable to parse PEM")

	_, err = certutil.ParseChainFromPEM([]byte("not PEM"))
	assert.EqualError(t, err, "potentially malformed PEM")

	_, err = certutil.ParseChainFromPEM([]byte("-----BEGIN CERTIFICATE-----\nAQID\n-----END CERTIFICATE-----\n"))
	assert.Error(t, err)

	_, err = certutil.ParseChainFromPEM([]byte("-----BEGIN PUBLIC KEY-----\nAQID\n-----END PUBLIC KEY-----\n"))
	assert.EqualError(t, err, "no certificates found")
}
