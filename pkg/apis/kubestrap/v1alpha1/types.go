package v1alpha1

import (
	"encoding/json"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	kubestrapapi "github.com/kubestrap/kubestrap/pkg/apis/kubestrap"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// BootstrapCluster is the single-node cluster this tool provisions. The
// spec is assembled from flags, environment variables and the optional
// configuration file; the status is persisted as JSON under /run so a
// later invocation can report progress.
type BootstrapCluster struct {
	metav1.TypeMeta `json:",inline"`

	Spec BootstrapClusterSpec `json:"spec"`
	// +optional
	Status BootstrapClusterStatus `json:"status,omitempty"`
}

// RegistryAuth is one registry credential pair. Docker Hub credentials
// are mandatory, GHCR and Quay are optional.
type RegistryAuth struct {
	// +optional
	User string `json:"user,omitempty" mapstructure:"user"`
	// +optional
	Token string `json:"token,omitempty" mapstructure:"token"`
}

func (a *RegistryAuth) IsSet() bool {
	return a.User != "" && a.Token != ""
}

type BootstrapClusterSpec struct {
	// +optional
	Ip net.IP `json:"ip,omitempty" mapstructure:"ip"`
	// +optional
	KubernetesVersion string `json:"kubernetesVersion,omitempty" mapstructure:"kubernetes_version"`
	// +optional
	ClusterName string `json:"clusterName,omitempty" mapstructure:"cluster_name"`
	// +optional
	PodSubnet string `json:"podSubnet,omitempty" mapstructure:"pod_subnet"`
	// +optional
	MetalLBRange string `json:"metalLBRange,omitempty" mapstructure:"metallb_range"`
	// +optional
	NetworkInterface string `json:"networkInterface,omitempty" mapstructure:"network_interface"`
	// ApiHost is an additional name for the API server, added to the
	// certificate SANs and to /etc/hosts.
	// +optional
	ApiHost string `json:"apiHost,omitempty" mapstructure:"api_host"`
	// OpenFirewall opens the required ports in ufw instead of disabling it.
	// +optional
	OpenFirewall bool `json:"openFirewall,omitempty" mapstructure:"open_firewall"`
	// +optional
	DockerAuth RegistryAuth `json:"dockerAuth,omitempty" mapstructure:"docker"`
	// +optional
	GHCRAuth RegistryAuth `json:"ghcrAuth,omitempty" mapstructure:"ghcr"`
	// +optional
	QuayAuth RegistryAuth `json:"quayAuth,omitempty" mapstructure:"quay"`
}

// GetApiEndPoint returns the name under which the API server is reached.
func (c *BootstrapClusterSpec) GetApiEndPoint() string {
	if c.ApiHost != "" {
		return c.ApiHost
	}
	return c.Ip.String()
}

type BootstrapClusterStatus struct {
	LastUpdateTimeStamp metav1.Time               `json:"lastUpdateTimeStamp"`
	State               kubestrapapi.ClusterState `json:"state"`
	CurrentPhase        string                    `json:"currentPhase"`
	PodsState           ClusterPodsState          `json:"podsState"`
	// +optional
	Prepull []*ImagePullState `json:"prepull,omitempty"`
}

type ClusterPodsState struct {
	Count        int         `json:"count"`
	ReadyCount   int         `json:"readyCount"`
	UnreadyCount int         `json:"unreadyCount"`
	Ready        []*PodState `json:"ready"`
	Unready      []*PodState `json:"unready"`
}

type PodState struct {
	Namespace string
	Name      string
	Ok        bool
	Message   string
}

func (r *PodState) LongString() string {
	return fmt.Sprintf("%s %-20s %-54s %s", OkString(r.Ok), r.Namespace, r.Name, r.Message)
}

func (r *PodState) String() string {
	return fmt.Sprintf("%s/%s:%s", r.Namespace, r.Name, OkString(r.Ok))
}

// ImagePullState records the outcome of one pre-pull attempt, including
// which registry finally served the image.
type ImagePullState struct {
	Image    string `json:"image"`
	Registry string `json:"registry,omitempty"`
	Ok       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
}

func (r *ImagePullState) String() string {
	return fmt.Sprintf("%s %s", OkString(r.Ok), r.Image)
}

func OkString(b bool) string {
	if b {
		return "🟩"
	}
	return "🟥"
}

func (cluster *BootstrapCluster) Update(state kubestrapapi.ClusterState, phase string, ready, unready []*PodState) {
	cluster.Status.State = state
	cluster.Status.CurrentPhase = phase
	cluster.Status.LastUpdateTimeStamp = metav1.Now()
	cluster.Status.PodsState.Count = len(ready) + len(unready)
	cluster.Status.PodsState.Ready = ready
	cluster.Status.PodsState.ReadyCount = len(ready)
	cluster.Status.PodsState.Unready = unready
	cluster.Status.PodsState.UnreadyCount = len(unready)
	cluster.Persist()
}

func (cluster BootstrapCluster) Persist() {
	clusterJSON, err := json.MarshalIndent(cluster, "", "  ")
	if err == nil {
		if err = utils.FS.MkdirAll(constants.StatusDirectory, 0755); err == nil {
			err = utils.FS.WriteFile(constants.StatusFile, clusterJSON, 0644)
		}
		if err != nil {
			log.WithError(err).Warn("Failed to write status.json")
		}
	} else {
		log.WithError(err).Warn("Failed to marshal status.json")
	}
}

func LoadBootstrapCluster() (*BootstrapCluster, error) {
	cluster := &BootstrapCluster{}
	clusterJSON, err := utils.FS.ReadFile(constants.StatusFile)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(clusterJSON, cluster); err != nil {
		return nil, err
	}
	return cluster, nil
}
