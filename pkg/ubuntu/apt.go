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
package ubuntu

import (
	"fmt"
	"path/filepath"

	"github.com/bitfield/script"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

const kubernetesRepositoryURL = "https://pkgs.k8s.io/core:/stable:/%s/deb/"

// AptUpdate refreshes the package indexes.
func AptUpdate() error {
	log.Info("Updating apt package indexes")
	if out, err := utils.Exec.Run(true, constants.AptGetCmd, "update"); err != nil {
		return errors.Wrapf(err, "Error while updating apt indexes: %s", string(out))
	}
	return nil
}

// InstallPackages installs the named packages non-interactively.
func InstallPackages(packages ...string) error {
	log.WithField("packages", packages).Info("Installing packages")
	args := append([]string{"install", "-y"}, packages...)
	if out, err := utils.Exec.Run(true, constants.AptGetCmd, args...); err != nil {
		return errors.Wrapf(err, "Error while installing %v: %s", packages, string(out))
	}
	return nil
}

// ConfigureKubernetesRepository installs the pkgs.k8s.io signing key and
// apt source for the given minor release (e.g. "v1.29"). Both artifacts
// are written only once.
func ConfigureKubernetesRepository(minor string) error {
	repository := fmt.Sprintf(kubernetesRepositoryURL, minor)

	err := utils.ExecuteIfNotExist(constants.AptKeyringPath, func() error {
		log.WithField("repository", repository).Info("Installing Kubernetes apt signing key")
		if err := utils.FS.MkdirAll(filepath.Dir(constants.AptKeyringPath), 0755); err != nil {
			return errors.Wrapf(err, "While creating %s", filepath.Dir(constants.AptKeyringPath))
		}

		key := script.Get(repository + "Release.key")
		if key.Error() != nil {
			return errors.Wrap(key.Error(), "While downloading the repository signing key")
		}
		out, err := utils.Exec.Pipe(key, true, "/usr/bin/gpg",
			"--batch", "--yes", "--dearmor", "-o", constants.AptKeyringPath)
		if err != nil {
			return errors.Wrapf(err, "Error while dearmoring the signing key: %s", string(out))
		}
		return nil
	})
	if err != nil {
		return err
	}

	sources := fmt.Sprintf("deb [signed-by=%s] %s /\n", constants.AptKeyringPath, repository)
	if err := utils.FS.WriteFile(constants.AptSourcesPath, []byte(sources), 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", constants.AptSourcesPath)
	}

	return AptUpdate()
}

// InstallKubernetesTools installs kubeadm, kubelet and kubectl pinned to
// the exact version and holds them so unattended upgrades cannot move
// them.
func InstallKubernetesTools(version string) error {
	pin := fmt.Sprintf("%s-%s", version, constants.KubernetesPackageRevision)
	if err := InstallPackages("kubelet="+pin, "kubeadm="+pin, "kubectl="+pin); err != nil {
		return err
	}

	log.WithField("version", pin).Info("Holding Kubernetes packages")
	if out, err := utils.Exec.Run(true, constants.AptMarkCmd, "hold", "kubelet", "kubeadm", "kubectl"); err != nil {
		return errors.Wrapf(err, "Error while holding Kubernetes packages: %s", string(out))
	}
	return nil
}

// InstallTimeSync installs chrony and makes sure it runs. Certificate
// validation during the TLS bootstrap needs a synchronized clock.
func InstallTimeSync() error {
	if err := InstallPackages("chrony"); err != nil {
		return err
	}
	if err := EnableService("chrony"); err != nil {
		return err
	}
	return StartService("chrony")
}
