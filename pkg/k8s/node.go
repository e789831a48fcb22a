package k8s

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"

	"github.com/kubestrap/kubestrap/pkg/constants"
)

const controlPlaneTaint = "node-role.kubernetes.io/control-plane"

// UntaintControlPlane removes the control-plane NoSchedule taint from
// every node. On a single node cluster nothing would schedule otherwise.
func (config *Config) UntaintControlPlane(ctx context.Context) error {
	client, err := config.Client()
	if err != nil {
		return err
	}

	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return err
	}

	for i := range nodes.Items {
		node := &nodes.Items[i]
		taints := make([]v1.Taint, 0, len(node.Spec.Taints))
		removed := false
		for _, taint := range node.Spec.Taints {
			if taint.Key == controlPlaneTaint {
				removed = true
				continue
			}
			taints = append(taints, taint)
		}
		if !removed {
			continue
		}
		node.Spec.Taints = taints
		log.WithField("node", node.Name).Info("Removing control-plane taint")
		if _, err = client.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func isNodeReady(node *v1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == v1.NodeReady {
			return condition.Status == v1.ConditionTrue
		}
	}
	return false
}

func areNodesReady(client kubernetes.Interface) wait.ConditionWithContextFunc {
	return func(ctx context.Context) (bool, error) {
		nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return false, err
		}
		if len(nodes.Items) == 0 {
			return false, nil
		}
		for i := range nodes.Items {
			if !isNodeReady(&nodes.Items[i]) {
				log.WithField("node", nodes.Items[i].Name).Debug("Node not ready yet")
				return false, nil
			}
		}
		return true, nil
	}
}

// WaitForNodeReady blocks until every node reports the Ready condition.
// The node only becomes Ready once the CNI is functional, so this also
// proves Calico out.
func (config *Config) WaitForNodeReady(ctx context.Context, timeout time.Duration) error {
	client, err := config.Client()
	if err != nil {
		return err
	}

	log.Info("Waiting for the node to become Ready...")
	condition := areNodesReady(client)
	if timeout > 0 {
		return wait.PollUntilContextTimeout(ctx, constants.SettlePollInterval, timeout, true, condition)
	}
	return wait.PollUntilContextCancel(ctx, constants.SettlePollInterval, true, condition)
}
