package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func makePod(name string, phase v1.PodPhase, ready bool) v1.Pod {
	status := v1.ConditionFalse
	if ready {
		status = v1.ConditionTrue
	}
	return v1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "kube-system"},
		Status: v1.PodStatus{
			Phase:      phase,
			Conditions: []v1.PodCondition{{Type: v1.PodReady, Status: status}},
		},
	}
}

func TestIsPodSettled(t *testing.T) {
	running := makePod("running", v1.PodRunning, true)
	assert.True(t, IsPodSettled(&running))

	notReady := makePod("not-ready", v1.PodRunning, false)
	assert.False(t, IsPodSettled(&notReady))

	succeeded := makePod("succeeded", v1.PodSucceeded, false)
	assert.True(t, IsPodSettled(&succeeded), "Completed one-shot jobs count as settled")

	pending := makePod("pending", v1.PodPending, false)
	assert.False(t, IsPodSettled(&pending))
}

func TestGetPodsSeparatedByStatus(t *testing.T) {
	pods := []v1.Pod{
		makePod("coredns", v1.PodRunning, true),
		makePod("calico-node", v1.PodPending, false),
		makePod("install-job", v1.PodSucceeded, false),
	}

	settled, unsettled := GetPodsSeparatedByStatus(pods)
	assert.Len(t, settled, 2)
	assert.Len(t, unsettled, 1)
	assert.Equal(t, "calico-node", unsettled[0].Name)
	assert.Equal(t, string(v1.PodPending), unsettled[0].Message)
}
