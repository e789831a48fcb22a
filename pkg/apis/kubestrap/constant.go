package kubestrap

import "fmt"

// ClusterState tracks where the bootstrap pipeline currently is. The
// state is persisted with the cluster status so that a later invocation
// or the status command can report progress.
type ClusterState int16

const (
	Undefined ClusterState = iota
	Pending
	Preparing
	Installing
	Initializing // kubeadm init running or just finished
	Provisioning // CNI, load balancer and registry pre-pull
	Stabilizing
	Running
	Failed
)

const (
	GroupName            = "kubestrap.dev"
	V1alpha1Version      = "v1alpha1"
	BootstrapClusterKind = "BootstrapCluster"
)

func (s ClusterState) String() string {
	switch s {
	case Undefined:
		return "Undefined"
	case Pending:
		return "Pending"
	case Preparing:
		return "Preparing"
	case Installing:
		return "Installing"
	case Initializing:
		return "Initializing"
	case Provisioning:
		return "Provisioning"
	case Stabilizing:
		return "Stabilizing"
	case Running:
		return "Running"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

func (s *ClusterState) Set(value string) {
	switch value {
	case "Undefined":
		*s = Undefined
	case "Pending":
		*s = Pending
	case "Preparing":
		*s = Preparing
	case "Installing":
		*s = Installing
	case "Initializing":
		*s = Initializing
	case "Provisioning":
		*s = Provisioning
	case "Stabilizing":
		*s = Stabilizing
	case "Running":
		*s = Running
	case "Failed":
		*s = Failed
	}
}

func (s ClusterState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *ClusterState) UnmarshalJSON(data []byte) error {
	// A truncated or hand-edited status file may hold something other
	// than a JSON string here.
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid cluster state %q", string(data))
	}
	s.Set(string(data[1 : len(data)-1]))
	return nil
}
