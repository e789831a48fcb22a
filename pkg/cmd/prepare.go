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
	"github.com/spf13/cobra"

	"github.com/kubestrap/kubestrap/pkg/config"
	"github.com/kubestrap/kubestrap/pkg/containerd"
	"github.com/kubestrap/kubestrap/pkg/k8s"
)

// prepareCmd stops after the host preparation: useful for image builds
// that bake a ready host and run kubeadm init at first boot.
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare the host without initializing the cluster",
	Long: `Performs the host preparation steps only:

- Disables swap and makes it permanent,
- Loads the required kernel modules,
- Applies the Kubernetes sysctl settings,
- Installs and configures containerd,
- Installs the pinned kubeadm, kubelet and kubectl packages.

No credentials are needed and kubeadm init is not run.`,
	PersistentPreRun: config.UpPersistentPreRun,
	Run:              performPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	config.ConfigureClusterCommand(prepareCmd.Flags(), clusterConfig)
}

func performPrepare(cmd *cobra.Command, args []string) {
	cobra.CheckErr(config.DecodeClusterConfig(clusterConfig))

	ctx, cancel := waitContext(cmd.Context(), waitTimeout)
	defer cancel()

	cobra.CheckErr(k8s.PrepareKubernetesEnvironment(clusterConfig))
	cobra.CheckErr(containerd.Install())
	cobra.CheckErr(containerd.WaitForContainerService(ctx))
	cobra.CheckErr(k8s.InstallTools(clusterConfig.KubernetesVersion))
}
