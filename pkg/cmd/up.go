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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubestrap/kubestrap/pkg/addons"
	kubestrapapi "github.com/kubestrap/kubestrap/pkg/apis/kubestrap"
	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/cmd/options"
	"github.com/kubestrap/kubestrap/pkg/config"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/containerd"
	"github.com/kubestrap/kubestrap/pkg/k8s"
	"github.com/kubestrap/kubestrap/pkg/registry"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision the cluster end to end",
	Long: `Provisions a single-node Kubernetes cluster. Performs the following
operations:

- Validates the registry credentials (Docker Hub is mandatory),
- Prepares the host: swap, kernel modules, sysctl, time sync, firewall,
- Installs and configures containerd with the systemd cgroup driver,
- Installs the pinned kubeadm, kubelet and kubectl packages,
- Authenticates against the configured registries,
- Runs kubeadm init and installs Calico and MetalLB,
- Pre-pulls the addon images with registry fallback,
- Applies the MetalLB address pool once kube-system has settled,
- Exports the kubeconfig and certificates.

Running it twice fails on kubeadm init: the command does not try to be
idempotent, reset the node first.`,
	PersistentPreRun: config.UpPersistentPreRun,
	Run:              performUp,
}

var clusterConfig = &v1alpha1.BootstrapClusterSpec{}

var skipPrepull bool
var outputDir string

func init() {
	rootCmd.AddCommand(upCmd)

	config.ConfigureClusterCommand(upCmd.Flags(), clusterConfig)
	upCmd.Flags().BoolVar(&skipPrepull, options.SkipPrepull, false, "Skip the addon image pre-pull")
	upCmd.Flags().StringVar(&outputDir, options.OutputDir, ".", "Directory receiving the kubeconfig and certificates")
}

// checkStep marks the cluster Failed in the persisted status before
// aborting, so that the status command reports where the bootstrap
// stopped.
func checkStep(cluster *v1alpha1.BootstrapCluster, phase string, err error) {
	if err != nil {
		cluster.Update(kubestrapapi.Failed, phase, nil, nil)
	}
	cobra.CheckErr(err)
}

func performUp(cmd *cobra.Command, args []string) {
	cobra.CheckErr(config.DecodeClusterConfig(clusterConfig))
	// Credentials are checked before anything touches the host: a
	// misconfigured invocation must leave no trace.
	cobra.CheckErr(config.ValidateCredentials(clusterConfig))

	cluster := &v1alpha1.BootstrapCluster{
		TypeMeta: metav1.TypeMeta{
			Kind:       kubestrapapi.BootstrapClusterKind,
			APIVersion: kubestrapapi.GroupName + "/" + kubestrapapi.V1alpha1Version,
		},
		Spec: *clusterConfig,
	}
	v1alpha1.SetDefaults_BootstrapClusterStatus(&cluster.Status)
	cluster.Update(kubestrapapi.Pending, "validated", nil, nil)

	ctx, cancel := waitContext(cmd.Context(), waitTimeout)
	defer cancel()

	cluster.Update(kubestrapapi.Preparing, "host preparation", nil, nil)
	checkStep(cluster, "host preparation", k8s.PrepareKubernetesEnvironment(clusterConfig))

	cluster.Update(kubestrapapi.Installing, "container runtime", nil, nil)
	checkStep(cluster, "container runtime", containerd.Install())
	checkStep(cluster, "container runtime", containerd.WaitForContainerService(ctx))
	checkStep(cluster, "kubernetes tools", k8s.InstallTools(clusterConfig.KubernetesVersion))

	checkStep(cluster, "registry authentication", registry.Authenticate(clusterConfig))

	log.WithFields(log.Fields{
		"config": clusterConfig,
	}).Info("Running kubeadm init")
	cluster.Update(kubestrapapi.Initializing, "kubeadm init", nil, nil)
	checkStep(cluster, "kubeadm init", k8s.RunKubeadmInit(clusterConfig))

	kubeConfig, err := k8s.LoadFromDefault()
	checkStep(cluster, "kubeadm init", err)
	checkStep(cluster, "kubeconfig installation", k8s.InstallUserKubeConfig(kubeConfig))
	checkStep(cluster, "api server readiness", kubeConfig.CheckClusterRunning(10, 2, 500))
	checkStep(cluster, "control-plane taint", kubeConfig.UntaintControlPlane(ctx))

	cluster.Update(kubestrapapi.Provisioning, "addons", nil, nil)
	if !skipPrepull {
		cluster.Status.Prepull = registry.Prepull(constants.PrepullImages, clusterConfig)
		cluster.Persist()
	}

	checkStep(cluster, "calico", addons.InstallCalico(ctx, kubeConfig, clusterConfig.PodSubnet))
	checkStep(cluster, "calico", kubeConfig.WaitForCalico(ctx, waitTimeout))
	checkStep(cluster, "node readiness", kubeConfig.WaitForNodeReady(ctx, waitTimeout))

	checkStep(cluster, "metallb", addons.InstallMetalLB(ctx, kubeConfig))

	// The address pool is only applied after every kube-system pod has
	// settled. Applying it earlier races the MetalLB admission webhook.
	cluster.Update(kubestrapapi.Stabilizing, "waiting for kube-system", nil, nil)
	checkStep(cluster, "waiting for kube-system",
		kubeConfig.WaitForSystemPods(ctx, waitTimeout, func(state bool, settled, unsettled []*v1alpha1.PodState, iteration int) bool {
			cluster.Update(kubestrapapi.Stabilizing, "waiting for kube-system", settled, unsettled)
			return state
		}))

	checkStep(cluster, "metallb address pool",
		addons.ApplyAddressPool(ctx, kubeConfig, clusterConfig.MetalLBRange))
	checkStep(cluster, "metallb address pool",
		addons.WriteAddressPoolManifest(clusterConfig.MetalLBRange, "metallb.yaml"))

	checkStep(cluster, "export", kubeConfig.ExportKubeconfig(outputDir, clusterConfig.ClusterName))

	cluster.Update(kubestrapapi.Running, "done", cluster.Status.PodsState.Ready, nil)
	log.Info("Cluster is up")
}
