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

	"github.com/kubestrap/kubestrap/pkg/cmd/options"
	"github.com/kubestrap/kubestrap/pkg/config"
	"github.com/kubestrap/kubestrap/pkg/k8s"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the kubeconfig and certificates",
	Long: `Exports the cluster kubeconfig, renamed to the cluster name, along
with the CA and client certificates in PEM and DER encodings. The
kubeconfig of an already provisioned cluster can be exported again at
any time.`,
	PersistentPreRun: config.UpPersistentPreRun,
	Run:              performExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	config.ConfigureClusterCommand(exportCmd.Flags(), clusterConfig)
	exportCmd.Flags().StringVar(&outputDir, options.OutputDir, ".", "Directory receiving the kubeconfig and certificates")
}

func performExport(cmd *cobra.Command, args []string) {
	cobra.CheckErr(config.DecodeClusterConfig(clusterConfig))

	kubeConfig, err := k8s.LoadFromDefault()
	cobra.CheckErr(err)
	cobra.CheckErr(kubeConfig.ExportKubeconfig(outputDir, clusterConfig.ClusterName))
}
