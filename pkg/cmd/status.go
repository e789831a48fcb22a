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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the bootstrap progress",
	Long: `Prints the persisted bootstrap status: the current state, the last
phase reached and the pod settlement of the last stabilization pass.`,
	Run: performStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func performStatus(cmd *cobra.Command, args []string) {
	cluster, err := v1alpha1.LoadBootstrapCluster()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No cluster status found. Has kubestrap up been run?")
			return
		}
		cobra.CheckErr(err)
	}

	status := &cluster.Status
	fmt.Printf("State:  %s\n", status.State)
	fmt.Printf("Phase:  %s\n", status.CurrentPhase)
	fmt.Printf("Update: %s\n", status.LastUpdateTimeStamp)

	if status.PodsState.Count > 0 {
		fmt.Printf("Pods:   %d ready, %d unready\n",
			status.PodsState.ReadyCount, status.PodsState.UnreadyCount)
		for _, pod := range status.PodsState.Ready {
			fmt.Println(pod.LongString())
		}
		for _, pod := range status.PodsState.Unready {
			fmt.Println(pod.LongString())
		}
	}

	if len(status.Prepull) > 0 {
		fmt.Println("Pre-pulled images:")
		for _, image := range status.Prepull {
			fmt.Printf("  %s\n", image)
		}
	}
}
