package config

const (
	IP                = "cluster.ip"
	ApiHost           = "cluster.api_host"
	OpenFirewall      = "cluster.open_firewall"
	KubernetesVersion = "cluster.kubernetes_version"
	ClusterName       = "cluster.cluster_name"
	PodSubnet         = "cluster.pod_subnet"
	MetalLBRange      = "cluster.metallb_range"
	NetworkInterface  = "cluster.network_interface"

	DockerUser  = "cluster.docker.user"
	DockerToken = "cluster.docker.token"
	GHCRUser    = "cluster.ghcr.user"
	GHCRToken   = "cluster.ghcr.token"
	QuayUser    = "cluster.quay.user"
	QuayToken   = "cluster.quay.token"
)
