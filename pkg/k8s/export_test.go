package k8s

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubestrap/kubestrap/pkg/utils"
)

func selfSignedCertificate(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "kubernetes"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestWriteCertificate(t *testing.T) {
	oldFS := utils.FS
	utils.FS = utils.NewMemMapFS()
	defer func() { utils.FS = oldFS }()

	certPEM := selfSignedCertificate(t)
	require.NoError(t, writeCertificate("/out", "ca.crt", certPEM))

	written, err := utils.FS.ReadFile("/out/ca.crt.pem")
	require.NoError(t, err)
	require.Equal(t, certPEM, written)

	der, err := utils.FS.ReadFile("/out/ca.crt.der")
	require.NoError(t, err)
	_, err = x509.ParseCertificate(der)
	require.NoError(t, err)
}

func TestWriteCertificateRejectsGarbage(t *testing.T) {
	oldFS := utils.FS
	utils.FS = utils.NewMemMapFS()
	defer func() { utils.FS = oldFS }()

	require.Error(t, writeCertificate("/out", "ca.crt", nil))
	require.Error(t, writeCertificate("/out", "ca.crt", []byte("not a certificate")))
}

func TestExportCertificates(t *testing.T) {
	oldFS := utils.FS
	utils.FS = utils.NewMemMapFS()
	defer func() { utils.FS = oldFS }()

	certPEM := selfSignedCertificate(t)
	config := &Config{
		Clusters: map[string]*api.Cluster{
			"kubestrap": {CertificateAuthorityData: certPEM},
		},
		AuthInfos: map[string]*api.AuthInfo{
			"kubestrap": {ClientCertificateData: certPEM},
		},
	}

	require.NoError(t, config.exportCertificates("/out"))
	for _, name := range []string{"ca.crt.pem", "ca.crt.der", "client.crt.pem", "client.crt.der"} {
		exists, err := utils.FS.Exists("/out/" + name)
		require.NoError(t, err)
		require.True(t, exists, name)
	}
}
