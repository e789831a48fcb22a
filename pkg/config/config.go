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
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/cmd/options"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// defaultIp is the advertise address computed while registering the
// flags. DecodeClusterConfig re-derives the address from the selected
// network interface unless the user picked one explicitly.
var (
	defaultIp     net.IP
	ipFlagChanged bool
)

// ConfigureClusterCommand registers the cluster flags on flagSet. The
// single letter shorthands are kept from the original provisioning
// script so existing invocations keep working.
func ConfigureClusterCommand(flagSet *flag.FlagSet, clusterConfig *v1alpha1.BootstrapClusterSpec) {
	v1alpha1.SetDefaults_BootstrapClusterSpec(clusterConfig)
	defaultIp = clusterConfig.Ip

	flagSet.StringVarP(&clusterConfig.DockerAuth.User, options.DockerUser, "U", clusterConfig.DockerAuth.User, "Docker Hub user")
	flagSet.StringVarP(&clusterConfig.DockerAuth.Token, options.DockerToken, "T", clusterConfig.DockerAuth.Token, "Docker Hub access token")
	flagSet.StringVarP(&clusterConfig.GHCRAuth.User, options.GHCRUser, "G", clusterConfig.GHCRAuth.User, "GHCR user")
	flagSet.StringVarP(&clusterConfig.GHCRAuth.Token, options.GHCRToken, "g", clusterConfig.GHCRAuth.Token, "GHCR access token")
	flagSet.StringVarP(&clusterConfig.QuayAuth.User, options.QuayUser, "Q", clusterConfig.QuayAuth.User, "Quay user")
	flagSet.StringVarP(&clusterConfig.QuayAuth.Token, options.QuayToken, "q", clusterConfig.QuayAuth.Token, "Quay access token")
	flagSet.StringVarP(&clusterConfig.ApiHost, options.ApiHost, "A", clusterConfig.ApiHost, "Additional API server host name (added to SANs and /etc/hosts)")
	flagSet.BoolVarP(&clusterConfig.OpenFirewall, options.OpenFirewall, "F", clusterConfig.OpenFirewall, "Open the required ufw ports instead of disabling the firewall")

	flagSet.IPVar(&clusterConfig.Ip, options.Ip, clusterConfig.Ip, "IP address the API server advertises")
	flagSet.StringVar(&clusterConfig.KubernetesVersion, options.KubernetesVersion, clusterConfig.KubernetesVersion, "Kubernetes version to install")
	flagSet.StringVar(&clusterConfig.ClusterName, options.ClusterName, clusterConfig.ClusterName, "Cluster name")
	flagSet.StringVar(&clusterConfig.PodSubnet, options.PodSubnet, clusterConfig.PodSubnet, "Pod network CIDR")
	flagSet.StringVar(&clusterConfig.MetalLBRange, options.MetalLBRange, clusterConfig.MetalLBRange, "MetalLB address range (first-last or CIDR)")
	flagSet.StringVar(&clusterConfig.NetworkInterface, options.NetworkInterface, clusterConfig.NetworkInterface, "Network interface the cluster IP lives on")
}

// UpPersistentPreRun binds the cluster flags to their viper keys and
// maps the legacy environment variable names onto them. Environment
// variables win over flags, flags win over the configuration file.
func UpPersistentPreRun(cmd *cobra.Command, args []string) {
	flags := cmd.Flags()
	_ = viper.BindPFlag(IP, flags.Lookup(options.Ip))
	_ = viper.BindPFlag(ApiHost, flags.Lookup(options.ApiHost))
	_ = viper.BindPFlag(OpenFirewall, flags.Lookup(options.OpenFirewall))
	_ = viper.BindPFlag(KubernetesVersion, flags.Lookup(options.KubernetesVersion))
	_ = viper.BindPFlag(ClusterName, flags.Lookup(options.ClusterName))
	_ = viper.BindPFlag(PodSubnet, flags.Lookup(options.PodSubnet))
	_ = viper.BindPFlag(MetalLBRange, flags.Lookup(options.MetalLBRange))
	_ = viper.BindPFlag(NetworkInterface, flags.Lookup(options.NetworkInterface))
	_ = viper.BindPFlag(DockerUser, flags.Lookup(options.DockerUser))
	_ = viper.BindPFlag(DockerToken, flags.Lookup(options.DockerToken))
	_ = viper.BindPFlag(GHCRUser, flags.Lookup(options.GHCRUser))
	_ = viper.BindPFlag(GHCRToken, flags.Lookup(options.GHCRToken))
	_ = viper.BindPFlag(QuayUser, flags.Lookup(options.QuayUser))
	_ = viper.BindPFlag(QuayToken, flags.Lookup(options.QuayToken))

	// viper resolves a changed flag above a bound environment variable,
	// which would invert the documented "env wins" rule for the legacy
	// variable names. An explicit override keeps the environment on top.
	for key, name := range map[string]string{
		DockerUser:  "DOCKER_USER",
		DockerToken: "DOCKER_TOKEN",
		GHCRUser:    "GHCR_USER",
		GHCRToken:   "GHCR_TOKEN",
		QuayUser:    "QUAY_USER",
		QuayToken:   "QUAY_TOKEN",
		ApiHost:     "API_HOST",
	} {
		if value, ok := os.LookupEnv(name); ok {
			viper.Set(key, value)
		}
	}

	ipFlagChanged = flags.Changed(options.Ip)
}

// DecodeClusterConfig decodes the configuration from the viper settings.
// This allows providing configuration values as environment variables.
func DecodeClusterConfig(clusterConfig *v1alpha1.BootstrapClusterSpec) error {
	// Cannot use Unmarshal. Look here: https://github.com/spf13/viper/issues/368
	decoderConfig := mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToIPHookFunc(),
		WeaklyTypedInput: true,
		Result:           clusterConfig,
		Metadata:         nil,
	}

	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err != nil {
		return errors.Wrap(err, "While creating decoder")
	}

	if err := decoder.Decode(viper.AllSettings()["cluster"]); err != nil {
		return fmt.Errorf("failed to decode cluster settings: %w", err)
	}

	// The advertise address follows the selected network interface
	// unless the user gave one explicitly.
	if !ipFlagChanged && clusterConfig.Ip.Equal(defaultIp) {
		if ip, err := utils.GetInterfaceIP(clusterConfig.NetworkInterface); err != nil {
			log.WithError(err).WithField("interface", clusterConfig.NetworkInterface).
				Debug("Keeping the outbound address")
		} else {
			clusterConfig.Ip = ip
		}
	}
	return nil
}

// ValidateCredentials enforces the mandatory Docker Hub credentials.
// It runs before anything touches the host so a misconfigured
// invocation leaves no trace.
func ValidateCredentials(clusterConfig *v1alpha1.BootstrapClusterSpec) error {
	if !clusterConfig.DockerAuth.IsSet() {
		return errors.New("Docker Hub credentials are required: set DOCKER_USER and DOCKER_TOKEN or use -U/-T")
	}
	return nil
}
