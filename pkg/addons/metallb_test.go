package addons

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/kubestrap/kubestrap/pkg/utils"
)

func TestBuildAddressPool(t *testing.T) {
	pool := BuildAddressPool("172.16.25.240-172.16.25.250")

	assert.Equal(t, "IPAddressPool", pool.GetKind())
	assert.Equal(t, "metallb.io/v1beta1", pool.GetAPIVersion())
	assert.Equal(t, AddressPoolName, pool.GetName())
	assert.Equal(t, MetalLBNamespace, pool.GetNamespace())

	addresses, found, err := unstructured.NestedSlice(pool.Object, "spec", "addresses")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []interface{}{"172.16.25.240-172.16.25.250"}, addresses)
}

func TestBuildL2Advertisement(t *testing.T) {
	advert := BuildL2Advertisement()

	assert.Equal(t, "L2Advertisement", advert.GetKind())
	assert.Equal(t, MetalLBNamespace, advert.GetNamespace())

	pools, found, err := unstructured.NestedSlice(advert.Object, "spec", "ipAddressPools")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []interface{}{AddressPoolName}, pools)
}

func TestRenderAddressPoolManifest(t *testing.T) {
	manifest, err := RenderAddressPoolManifest("172.16.25.240-172.16.25.250")
	require.NoError(t, err)

	documents := strings.Split(string(manifest), "---\n")
	require.Len(t, documents, 2, "The manifest must contain the pool and the advertisement")

	pool := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal([]byte(documents[0]), &pool))
	assert.Equal(t, "IPAddressPool", pool["kind"])

	advert := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal([]byte(documents[1]), &advert))
	assert.Equal(t, "L2Advertisement", advert["kind"])
}

func TestWriteAddressPoolManifest(t *testing.T) {
	oldFS := utils.FS
	utils.FS = utils.NewMemMapFS()
	defer func() { utils.FS = oldFS }()

	require.NoError(t, WriteAddressPoolManifest("172.16.25.240-172.16.25.250", "/tmp/metallb.yaml"))

	content, err := utils.FS.ReadFile("/tmp/metallb.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(content), "172.16.25.240-172.16.25.250")
}

