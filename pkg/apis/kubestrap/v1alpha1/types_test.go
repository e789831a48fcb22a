package v1alpha1

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kubestrapapi "github.com/kubestrap/kubestrap/pkg/apis/kubestrap"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

func TestClusterStateJSON(t *testing.T) {
	payload, err := json.Marshal(kubestrapapi.Provisioning)
	require.NoError(t, err)
	assert.Equal(t, `"Provisioning"`, string(payload))

	var state kubestrapapi.ClusterState
	require.NoError(t, json.Unmarshal([]byte(`"Stabilizing"`), &state))
	assert.Equal(t, kubestrapapi.Stabilizing, state)

	// A corrupted status file must surface an error, not panic.
	assert.Error(t, json.Unmarshal([]byte(`7`), &state))
	assert.Error(t, json.Unmarshal([]byte(`null`), &state))
}

func TestGetApiEndPoint(t *testing.T) {
	spec := &BootstrapClusterSpec{Ip: net.ParseIP("192.168.99.2")}
	assert.Equal(t, "192.168.99.2", spec.GetApiEndPoint())

	spec.ApiHost = "cluster.example.com"
	assert.Equal(t, "cluster.example.com", spec.GetApiEndPoint())
}

func TestSetDefaults(t *testing.T) {
	spec := &BootstrapClusterSpec{}
	SetDefaults_BootstrapClusterSpec(spec)

	assert.Equal(t, constants.KubernetesVersion, spec.KubernetesVersion)
	assert.Equal(t, constants.DefaultClusterName, spec.ClusterName)
	assert.Equal(t, constants.DefaultPodSubnet, spec.PodSubnet)
	assert.Equal(t, constants.DefaultMetalLBRange, spec.MetalLBRange)

	// Provided values are left alone.
	spec = &BootstrapClusterSpec{KubernetesVersion: "1.30.0"}
	SetDefaults_BootstrapClusterSpec(spec)
	assert.Equal(t, "1.30.0", spec.KubernetesVersion)
}

func TestPersistAndLoad(t *testing.T) {
	oldFS := utils.FS
	utils.FS = utils.NewMemMapFS()
	defer func() { utils.FS = oldFS }()

	cluster := &BootstrapCluster{}
	SetDefaults_BootstrapCluster(cluster)
	cluster.Spec.ClusterName = "kubestrap"
	cluster.Update(kubestrapapi.Provisioning, "addons",
		[]*PodState{{Namespace: "kube-system", Name: "coredns", Ok: true, Message: "Running"}}, nil)

	loaded, err := LoadBootstrapCluster()
	require.NoError(t, err)
	assert.Equal(t, kubestrapapi.Provisioning, loaded.Status.State)
	assert.Equal(t, "addons", loaded.Status.CurrentPhase)
	assert.Equal(t, 1, loaded.Status.PodsState.ReadyCount)
	assert.Equal(t, "kubestrap", loaded.Spec.ClusterName)
}
