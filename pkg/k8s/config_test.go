package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd/api"
)

func testConfig() *Config {
	return &Config{
		Clusters: map[string]*api.Cluster{
			"kubernetes": {Server: "https://192.168.99.2:6443"},
		},
		AuthInfos: map[string]*api.AuthInfo{
			"kubernetes-admin": {},
		},
		Contexts: map[string]*api.Context{
			"kubernetes-admin@kubernetes": {Cluster: "kubernetes", AuthInfo: "kubernetes-admin"},
		},
		CurrentContext: "kubernetes-admin@kubernetes",
	}
}

func TestRenameConfig(t *testing.T) {
	config := testConfig().RenameConfig("kubestrap")

	require.Contains(t, config.Clusters, "kubestrap")
	require.Contains(t, config.AuthInfos, "kubestrap")
	require.Contains(t, config.Contexts, "kubestrap")
	assert.Equal(t, "kubestrap", config.CurrentContext)
	assert.Equal(t, "kubestrap", config.Contexts["kubestrap"].Cluster)
	assert.Equal(t, "kubestrap", config.Contexts["kubestrap"].AuthInfo)
}

func TestIsConfigServerAddress(t *testing.T) {
	config := testConfig()

	assert.True(t, config.IsConfigServerAddress("192.168.99.2"))
	assert.False(t, config.IsConfigServerAddress("10.0.0.1"))
	assert.False(t, config.IsConfigServerAddress("cluster.example.com"))
}
