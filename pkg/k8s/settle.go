package k8s

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/constants"
)

// IsPodReady returns false if the Pod Status is nil
func IsPodReady(pod *v1.Pod) bool {
	condition := getPodReadyCondition(&pod.Status)
	return condition != nil && condition.Status == v1.ConditionTrue
}

func getPodReadyCondition(status *v1.PodStatus) *v1.PodCondition {
	for i := range status.Conditions {
		if status.Conditions[i].Type == v1.PodReady {
			return &status.Conditions[i]
		}
	}
	return nil
}

// IsPodSettled reports whether the pod counts as settled for the
// purpose of gating the next bootstrap step: Running and ready, or
// Succeeded (completed one-shot jobs).
func IsPodSettled(pod *v1.Pod) bool {
	switch pod.Status.Phase {
	case v1.PodRunning:
		return IsPodReady(pod)
	case v1.PodSucceeded:
		return true
	default:
		return false
	}
}

// GetPodsSeparatedByStatus splits pods in settled and unsettled.
func GetPodsSeparatedByStatus(pods []v1.Pod) (settled, unsettled []*v1alpha1.PodState) {
	for i := range pods {
		pod := &pods[i]
		state := &v1alpha1.PodState{
			Namespace: pod.Namespace,
			Name:      pod.Name,
			Ok:        IsPodSettled(pod),
			Message:   string(pod.Status.Phase),
		}
		if state.Ok {
			settled = append(settled, state)
		} else {
			unsettled = append(unsettled, state)
		}
	}
	return settled, unsettled
}

// GetPodStatus lists the pods of namespace (all namespaces when empty)
// matching selector and splits them by settlement.
func GetPodStatus(ctx context.Context, clientset kubernetes.Interface, namespace, selector string) (settled, unsettled []*v1alpha1.PodState, err error) {
	var list *v1.PodList
	if list, err = clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector}); err != nil {
		return
	}
	settled, unsettled = GetPodsSeparatedByStatus(list.Items)
	return settled, unsettled, nil
}

// PodStateCallbackFunc is called on every poll iteration with the
// current settlement state. It may veto readiness by returning false.
type PodStateCallbackFunc func(state bool, settled, unsettled []*v1alpha1.PodState, iteration int) bool

func arePodsSettled(c kubernetes.Interface, namespace, selector string, minimumPods int, callback PodStateCallbackFunc) wait.ConditionWithContextFunc {
	iteration := 0
	return func(ctx context.Context) (bool, error) {
		settled, unsettled, err := GetPodStatus(ctx, c, namespace, selector)
		if err != nil {
			return false, err
		}
		log.WithFields(log.Fields{
			"namespace": namespace,
			"settled":   len(settled),
			"unsettled": len(unsettled),
		}).Infof("Pods settled: %d, unsettled: %d", len(settled), len(unsettled))

		result := len(settled) >= minimumPods && len(unsettled) == 0
		if callback != nil {
			result = callback(result, settled, unsettled, iteration)
		}
		iteration++

		return result, nil
	}
}

// WaitForPodsSettled blocks until every pod of namespace matching
// selector is Running and ready or has Succeeded, and at least
// minimumPods exist. A zero timeout waits until ctx is canceled.
func WaitForPodsSettled(ctx context.Context, c kubernetes.Interface, namespace, selector string, minimumPods int, timeout time.Duration, callback PodStateCallbackFunc) error {
	condition := arePodsSettled(c, namespace, selector, minimumPods, callback)
	if timeout > 0 {
		return wait.PollUntilContextTimeout(ctx, constants.SettlePollInterval, timeout, true, condition)
	}
	return wait.PollUntilContextCancel(ctx, constants.SettlePollInterval, true, condition)
}

// WaitForSystemPods waits until every kube-system pod reports
// Running/Succeeded. MetalLB address pools must not be applied before
// this holds.
func (config *Config) WaitForSystemPods(ctx context.Context, timeout time.Duration, callback PodStateCallbackFunc) error {
	log.Info("Waiting for kube-system pods...")
	client, err := config.Client()
	if err != nil {
		return err
	}

	err = WaitForPodsSettled(ctx, client, metav1.NamespaceSystem, "", 1, timeout, callback)
	if err != nil {
		log.WithError(err).Error("kube-system pods not settled")
	} else {
		log.Info("kube-system pods settled")
	}
	return err
}

// WaitForCalico waits until the calico-node daemonset pods are ready.
func (config *Config) WaitForCalico(ctx context.Context, timeout time.Duration) error {
	log.Info("Waiting for Calico...")
	client, err := config.Client()
	if err != nil {
		return err
	}

	return WaitForPodsSettled(ctx, client, "", "k8s-app=calico-node", 1, timeout, nil)
}
