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
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/ubuntu"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

const serviceName = "containerd"

// Install installs containerd from the Ubuntu archive and configures it
// for kubeadm: default configuration with the systemd cgroup driver.
// The post-configuration restart is best effort; the socket wait that
// follows is what actually gates progress.
func Install() error {
	if err := ubuntu.InstallPackages(serviceName); err != nil {
		return err
	}
	if err := Configure(); err != nil {
		return err
	}
	if err := ubuntu.RestartService(serviceName, true); err != nil {
		return err
	}
	return ubuntu.EnableService(serviceName)
}

// Configure renders /etc/containerd/config.toml from the runtime's own
// default configuration, switched to the systemd cgroup driver. The
// kubelet is configured with the same driver; mismatched drivers are the
// classic cause of pods stuck in CrashLoopBackOff.
func Configure() error {
	log.WithField("file", constants.ContainerdConfigPath).Info("Configuring containerd")

	out, err := utils.Exec.Run(false, "/usr/bin/containerd", "config", "default")
	if err != nil {
		return errors.Wrap(err, "Error while generating default containerd configuration")
	}

	content := strings.ReplaceAll(string(out), "SystemdCgroup = false", "SystemdCgroup = true")
	if !strings.Contains(content, "SystemdCgroup = true") {
		return errors.New("generated containerd configuration has no SystemdCgroup setting")
	}

	if err := utils.FS.MkdirAll(filepath.Dir(constants.ContainerdConfigPath), 0755); err != nil {
		return errors.Wrap(err, "While creating /etc/containerd")
	}
	if err := utils.FS.WriteFile(constants.ContainerdConfigPath, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", constants.ContainerdConfigPath)
	}
	return nil
}
