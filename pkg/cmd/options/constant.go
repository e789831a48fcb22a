package options

const (
	// General
	Config    = "config"
	Verbosity = "verbosity"
	Json      = "json"
	Timeout   = "timeout"

	// Credentials
	DockerUser  = "docker-user"
	DockerToken = "docker-token"
	GHCRUser    = "ghcr-user"
	GHCRToken   = "ghcr-token"
	QuayUser    = "quay-user"
	QuayToken   = "quay-token"

	// Cluster
	Ip                = "ip"
	ApiHost           = "api-host"
	OpenFirewall      = "open-firewall"
	KubernetesVersion = "kubernetes-version"
	ClusterName       = "cluster-name"
	PodSubnet         = "pod-subnet"
	MetalLBRange      = "metallb-range"
	NetworkInterface  = "network-interface"

	// Pre-pull
	SkipPrepull = "skip-prepull"

	// Export
	OutputDir = "output-dir"
)
