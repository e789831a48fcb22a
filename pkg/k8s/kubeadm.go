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
package k8s

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/txn2/txeh"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/ubuntu"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

const kubeadmConfigTemplate = `
apiVersion: kubeadm.k8s.io/v1beta3
kind: ClusterConfiguration
kubernetesVersion: "{{ .KubernetesVersion }}"
clusterName: {{ .ClusterName }}
networking:
  podSubnet: {{ .PodSubnet }}
{{- if .ApiHost }}
controlPlaneEndpoint: {{ .ApiHost }}
apiServer:
  certSANs:
    - {{ .ApiHost }}
{{- end }}
---
apiVersion: kubeadm.k8s.io/v1beta3
kind: InitConfiguration
localAPIEndpoint:
  advertiseAddress: {{ .Ip }}
nodeRegistration:
  kubeletExtraArgs:
    node-ip: {{ .Ip }}
---
apiVersion: kubelet.config.k8s.io/v1beta1
kind: KubeletConfiguration
cgroupDriver: systemd
`

// CreateKubeadmConfiguration renders the kubeadm configuration for the
// cluster to wr. The kubelet runs with the systemd cgroup driver to
// match containerd.
func CreateKubeadmConfiguration(wr io.Writer, config *v1alpha1.BootstrapClusterSpec) error {
	tmpl, err := template.New("config").Parse(kubeadmConfigTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(wr, config)
}

// WriteKubeadmConfiguration renders the kubeadm configuration into a
// temporary file and returns it.
func WriteKubeadmConfiguration(fs afero.Fs, config *v1alpha1.BootstrapClusterSpec) (f afero.File, err error) {
	afs := &afero.Afero{Fs: fs}
	f, err = afs.TempFile("", "config*.yaml")
	if err != nil {
		return
	}
	defer f.Close()

	err = CreateKubeadmConfiguration(f, config)
	if err != nil {
		f.Close()
		afs.Remove(f.Name())
		f = nil
	}
	return
}

// RunKubeadm runs kubeadm with the given parameters.
func RunKubeadm(parameters []string) (err error) {
	log.Info("Running ", constants.KubeadmCmd, " ", strings.Join(parameters, " "), "...")
	if out, err := utils.Exec.Run(true, constants.KubeadmCmd, parameters...); err != nil {
		return errors.Wrap(err, string(out))
	} else {
		log.Trace(string(out))
	}
	return
}

// RunKubeadmInit bootstraps the control plane from the rendered
// configuration. Running it twice fails: kubeadm init is not idempotent,
// and no attempt is made to hide that.
func RunKubeadmInit(config *v1alpha1.BootstrapClusterSpec) error {
	fs := afero.NewOsFs()
	f, err := WriteKubeadmConfiguration(fs, config)
	if err != nil {
		return err
	}

	defer fs.Remove(f.Name())
	parameters := []string{
		"init",
		"--config",
		f.Name(),
	}
	return RunKubeadm(parameters)
}

// PrepareKubernetesEnvironment performs the host level preparation:
// swap, kernel modules, sysctl, time sync, firewall and the optional
// API host name mapping.
func PrepareKubernetesEnvironment(clusterConfig *v1alpha1.BootstrapClusterSpec) error {
	log.WithFields(log.Fields{
		"ip":                 clusterConfig.Ip.String(),
		"kubernetes_version": clusterConfig.KubernetesVersion,
		"api_host":           clusterConfig.ApiHost,
		"cluster_name":       clusterConfig.ClusterName,
		"pod_subnet":         clusterConfig.PodSubnet,
		"metallb_range":      clusterConfig.MetalLBRange,
		"open_firewall":      clusterConfig.OpenFirewall,
	}).Info("Cluster configuration")

	if err := ubuntu.DisableSwap(); err != nil {
		return errors.Wrap(err, "While disabling swap")
	}
	if err := ubuntu.LoadKernelModules(); err != nil {
		return errors.Wrap(err, "While loading kernel modules")
	}
	if err := ubuntu.TuneSysctl(); err != nil {
		return errors.Wrap(err, "While tuning sysctl")
	}
	if err := ubuntu.InstallTimeSync(); err != nil {
		return errors.Wrap(err, "While installing time synchronization")
	}
	if err := ubuntu.ConfigureFirewall(clusterConfig.OpenFirewall); err != nil {
		return errors.Wrap(err, "While configuring the firewall")
	}

	if clusterConfig.ApiHost != "" {
		log.WithFields(log.Fields{
			"ip":      clusterConfig.Ip,
			"apiHost": clusterConfig.ApiHost,
		}).Info("Check API host to IP mapping...")

		if contains, ips := ubuntu.IsHostMapped(clusterConfig.Ip, clusterConfig.ApiHost); !contains {
			log.WithFields(log.Fields{
				"ip":      clusterConfig.Ip,
				"apiHost": clusterConfig.ApiHost,
			}).Info("Mapping not found, creating...")

			if err := ubuntu.AddIpMapping(&txeh.HostsConfig{}, clusterConfig.Ip, clusterConfig.ApiHost, ips); err != nil {
				return errors.Wrapf(err, "While mapping %s to %s in the hosts file", clusterConfig.ApiHost, clusterConfig.Ip)
			}
		}
	}

	return nil
}

// InstallTools configures the pkgs.k8s.io repository and installs the
// pinned kubeadm, kubelet and kubectl packages.
func InstallTools(version string) error {
	minor, err := repositoryMinor(version)
	if err != nil {
		return err
	}
	if err := ubuntu.ConfigureKubernetesRepository(minor); err != nil {
		return err
	}
	return ubuntu.InstallKubernetesTools(version)
}

// repositoryMinor maps an exact version such as 1.29.3 to the pkgs.k8s.io
// repository name v1.29.
func repositoryMinor(version string) (string, error) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid kubernetes version %q", version)
	}
	return "v" + parts[0] + "." + parts[1], nil
}
