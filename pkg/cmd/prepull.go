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

	"github.com/spf13/cobra"

	"github.com/kubestrap/kubestrap/pkg/config"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/registry"
)

// prepullCmd represents the prepull command
var prepullCmd = &cobra.Command{
	Use:   "prepull [image...]",
	Short: "Authenticate and pre-pull the addon images",
	Long: `Writes the registry credentials, logs in to the configured registries
and pre-pulls the addon images, falling back through docker.io, ghcr.io,
quay.io and registry.k8s.io for each image. Without arguments the default
addon image list is pulled.

Pull failures are reported but are not fatal: the runtime pulls on demand
when pods are scheduled.`,
	PersistentPreRun: config.UpPersistentPreRun,
	Run:              performPrepull,
}

func init() {
	rootCmd.AddCommand(prepullCmd)
	config.ConfigureClusterCommand(prepullCmd.Flags(), clusterConfig)
}

func performPrepull(cmd *cobra.Command, args []string) {
	cobra.CheckErr(config.DecodeClusterConfig(clusterConfig))
	cobra.CheckErr(config.ValidateCredentials(clusterConfig))

	cobra.CheckErr(registry.Authenticate(clusterConfig))

	images := args
	if len(images) == 0 {
		images = constants.PrepullImages
	}
	for _, result := range registry.Prepull(images, clusterConfig) {
		fmt.Println(result)
	}
}
