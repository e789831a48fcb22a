package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

func SetDefaults_BootstrapClusterSpec(obj *BootstrapClusterSpec) {
	if obj.NetworkInterface == "" {
		obj.NetworkInterface = constants.DefaultNetworkInterface
	}
	if obj.Ip == nil {
		if ip, err := utils.GetInterfaceIP(obj.NetworkInterface); err == nil {
			obj.Ip = ip
		} else {
			obj.Ip, _ = utils.GetOutboundIP()
		}
	}
	if obj.KubernetesVersion == "" {
		obj.KubernetesVersion = constants.KubernetesVersion
	}
	if obj.ClusterName == "" {
		obj.ClusterName = constants.DefaultClusterName
	}
	if obj.PodSubnet == "" {
		obj.PodSubnet = constants.DefaultPodSubnet
	}
	if obj.MetalLBRange == "" {
		obj.MetalLBRange = constants.DefaultMetalLBRange
	}
}

func SetDefaults_BootstrapClusterStatus(obj *BootstrapClusterStatus) {
	if obj.State == kubestrap.Undefined {
		obj.State = kubestrap.Pending
	}
	if obj.CurrentPhase == "" {
		obj.CurrentPhase = "undefined"
	}
	if obj.LastUpdateTimeStamp.IsZero() {
		obj.LastUpdateTimeStamp = metav1.Now()
	}
}

func SetDefaults_BootstrapCluster(obj *BootstrapCluster) {
	SetDefaults_BootstrapClusterSpec(&obj.Spec)
	SetDefaults_BootstrapClusterStatus(&obj.Status)
}
