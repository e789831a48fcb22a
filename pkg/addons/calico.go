package addons

import (
	"context"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/k8s"
)

// CalicoChart installs the tigera operator, which in turn deploys the
// calico-node daemonset providing pod networking.
var CalicoChart = ChartSpec{
	ReleaseName: "calico",
	Repository:  "https://docs.tigera.io/calico/charts",
	Name:        "tigera-operator",
	Version:     constants.CalicoVersion,
	Namespace:   "tigera-operator",
}

// InstallCalico installs the CNI. The pod CIDR handed to the operator
// must match the podSubnet kubeadm was initialized with.
func InstallCalico(ctx context.Context, config *k8s.Config, podSubnet string) error {
	client := NewHelmClient(config)
	values := map[string]interface{}{
		"installation": map[string]interface{}{
			"calicoNetwork": map[string]interface{}{
				"ipPools": []interface{}{
					map[string]interface{}{
						"cidr":          podSubnet,
						"encapsulation": "VXLANCrossSubnet",
					},
				},
			},
		},
	}
	return client.InstallOrUpgrade(ctx, &CalicoChart, values)
}
