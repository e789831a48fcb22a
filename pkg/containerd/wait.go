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
package containerd

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

type CRICondition struct {
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

type CRIStatus struct {
	Conditions []CRICondition `json:"conditions"`
}

type CRIStatusResponse struct {
	Status CRIStatus `json:"status"`
}

// criReady queries the runtime through crictl and reports whether every
// advertised condition is true. A missing socket or an unreachable
// runtime is not an error, just not ready yet.
func criReady(ctx context.Context) (bool, error) {
	exist, err := utils.FS.Exists(constants.ContainerServiceSock)
	if err != nil {
		return false, err
	}
	if !exist {
		log.Debugf("Container service sock %s does not exist yet", constants.ContainerServiceSock)
		return false, nil
	}

	out, err := utils.Exec.Run(false, constants.CrictlCmd, "--runtime-endpoint",
		"unix://"+constants.ContainerServiceSock, "info")
	if err != nil {
		log.WithError(err).Debug("Container service not answering yet")
		return false, nil
	}

	response := &CRIStatusResponse{}
	if err = json.Unmarshal(out, response); err != nil {
		log.WithError(err).Warn("Error while parsing crictl status")
		return false, nil
	}

	conditions := 0
	falseConditions := 0
	for _, v := range response.Status.Conditions {
		conditions += 1
		if !v.Status {
			falseConditions += 1
		}
	}
	return conditions >= 2 && falseConditions == 0, nil
}

// WaitForContainerService blocks until the CRI runtime answers with all
// conditions true, polling every two seconds. With a zero timeout it
// waits until ctx is canceled.
func WaitForContainerService(ctx context.Context) error {
	log.Info("Waiting for the container runtime...")
	return wait.PollUntilContextCancel(ctx, constants.CRIPollInterval, true, criReady)
}
