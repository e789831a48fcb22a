/*
Copyright © 2024 The kubestrap authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package constants

import "time"

// Versions. KubernetesVersion is the exact version the apt packages are
// pinned and held at.
const (
	KubernetesVersion         = "1.29.3"
	KubernetesPackageRevision = "1.1"
	KubernetesRepositoryMinor = "v1.29"
	CalicoVersion             = "v3.27.2"
	MetalLBChartVersion       = "0.14.3"
)

// Host paths.
const (
	ContainerdConfigPath   = "/etc/containerd/config.toml"
	ContainerServiceSock   = "/run/containerd/containerd.sock"
	AdminKubeConfigPath    = "/etc/kubernetes/admin.conf"
	KubernetesManifestsDir = "/etc/kubernetes/manifests"
	DockerConfigDir        = "/root/.docker"
	DockerConfigPath       = "/root/.docker/config.json"
	FstabPath              = "/etc/fstab"
	ModulesLoadPath        = "/etc/modules-load.d/k8s.conf"
	SysctlDropInPath       = "/etc/sysctl.d/99-kubernetes-cri.conf"
	AptKeyringPath         = "/etc/apt/keyrings/kubernetes-apt-keyring.gpg"
	AptSourcesPath         = "/etc/apt/sources.list.d/kubernetes.list"
	StatusDirectory        = "/run/kubestrap"
	StatusFile             = "/run/kubestrap/status.json"
)

// Command paths.
const (
	KubeadmCmd   = "/usr/bin/kubeadm"
	KubectlCmd   = "/usr/bin/kubectl"
	CrictlCmd    = "/usr/bin/crictl"
	CtrCmd       = "/usr/bin/ctr"
	DockerCmd    = "/usr/bin/docker"
	AptGetCmd    = "/usr/bin/apt-get"
	AptMarkCmd   = "/usr/bin/apt-mark"
	SystemctlCmd = "/usr/bin/systemctl"
	SwapoffCmd   = "/usr/sbin/swapoff"
	SysctlCmd    = "/usr/sbin/sysctl"
	ModprobeCmd  = "/usr/sbin/modprobe"
	UfwCmd       = "/usr/sbin/ufw"
)

// Cluster defaults.
const (
	DefaultClusterName      = "kubestrap"
	DefaultPodSubnet        = "10.244.0.0/16"
	DefaultMetalLBRange     = "172.16.25.240-172.16.25.250"
	DefaultNetworkInterface = "eth0"
	APIServerBindPort       = 6443
)

// Registries tried in order during pre-pull. Docker Hub is first and is
// the only one pulled with credentials.
var RegistryFallbackOrder = []string{
	"docker.io",
	"ghcr.io",
	"quay.io",
	"registry.k8s.io",
}

const (
	DockerRegistry = "docker.io"
	GHCRRegistry   = "ghcr.io"
	QuayRegistry   = "quay.io"
)

// PrepullImages are pulled ahead of pod scheduling to dodge registry
// rate limits during CNI and load-balancer bring-up. Failures are
// informational; the runtime pulls on demand anyway.
var PrepullImages = []string{
	"docker.io/calico/cni:" + CalicoVersion,
	"docker.io/calico/node:" + CalicoVersion,
	"docker.io/calico/kube-controllers:" + CalicoVersion,
	"quay.io/metallb/controller:v" + MetalLBChartVersion,
	"quay.io/metallb/speaker:v" + MetalLBChartVersion,
	"registry.k8s.io/pause:3.9",
	"registry.k8s.io/coredns/coredns:v1.11.1",
}

// Polling intervals and timeouts for the readiness waits.
const (
	SettlePollInterval = 2 * time.Second
	CRIPollInterval    = 2 * time.Second
	CRIPollRetries     = 3
	DefaultWaitTimeout = 10 * time.Minute
)

// Firewall ports opened with -F instead of disabling ufw.
var FirewallTCPPorts = []string{
	"6443",
	"2379:2380",
	"10250",
	"10257",
	"10259",
	"30000:32767",
	"7946", // metallb memberlist
}
