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
package registry

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// DockerHubAuthKey is the historical key Docker Hub credentials are
// stored under in config.json.
const DockerHubAuthKey = "https://index.docker.io/v1/"

type AuthEntry struct {
	Auth string `json:"auth"`
}

type DockerConfig struct {
	Auths map[string]AuthEntry `json:"auths"`
}

// EncodeAuth produces the base64 user:token string stored in
// config.json.
func EncodeAuth(user, token string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + token))
}

// BuildDockerConfig assembles the config.json content for the
// configured credentials. Docker Hub is always present (it is
// mandatory), GHCR and Quay only when set.
func BuildDockerConfig(spec *v1alpha1.BootstrapClusterSpec) *DockerConfig {
	config := &DockerConfig{Auths: map[string]AuthEntry{
		DockerHubAuthKey: {Auth: EncodeAuth(spec.DockerAuth.User, spec.DockerAuth.Token)},
	}}
	if spec.GHCRAuth.IsSet() {
		config.Auths[constants.GHCRRegistry] = AuthEntry{Auth: EncodeAuth(spec.GHCRAuth.User, spec.GHCRAuth.Token)}
	}
	if spec.QuayAuth.IsSet() {
		config.Auths[constants.QuayRegistry] = AuthEntry{Auth: EncodeAuth(spec.QuayAuth.User, spec.QuayAuth.Token)}
	}
	return config
}

// WriteDockerConfig persists the credentials to /root/.docker/config.json
// with mode 0600.
func WriteDockerConfig(spec *v1alpha1.BootstrapClusterSpec) error {
	config := BuildDockerConfig(spec)
	payload, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "While marshalling docker configuration")
	}

	if err := utils.FS.MkdirAll(constants.DockerConfigDir, 0700); err != nil {
		return errors.Wrapf(err, "While creating %s", constants.DockerConfigDir)
	}
	log.WithField("file", constants.DockerConfigPath).Info("Writing registry credentials")
	if err := utils.FS.WriteFile(constants.DockerConfigPath, payload, 0600); err != nil {
		return errors.Wrapf(err, "While writing %s", constants.DockerConfigPath)
	}
	return nil
}

// login runs docker login against registry, feeding the token on stdin.
func login(registry string, auth *v1alpha1.RegistryAuth) error {
	out, err := utils.Exec.Pipe(strings.NewReader(auth.Token), true, constants.DockerCmd,
		"login", registry, "-u", auth.User, "--password-stdin")
	if err != nil {
		return errors.Wrapf(err, "Error while logging in to %s: %s", registry, string(out))
	}
	return nil
}

// Authenticate writes config.json and verifies the credentials. A
// Docker Hub login failure is fatal, GHCR and Quay failures only warn:
// the cluster comes up without them, just rate limited.
func Authenticate(spec *v1alpha1.BootstrapClusterSpec) error {
	if err := WriteDockerConfig(spec); err != nil {
		return err
	}

	if err := login(constants.DockerRegistry, &spec.DockerAuth); err != nil {
		return errors.Wrap(err, "Docker Hub login failed")
	}
	log.Info("Authenticated against Docker Hub")

	if spec.GHCRAuth.IsSet() {
		if err := login(constants.GHCRRegistry, &spec.GHCRAuth); err != nil {
			log.WithError(err).Warn("GHCR login failed, continuing without it")
		}
	}
	if spec.QuayAuth.IsSet() {
		if err := login(constants.QuayRegistry, &spec.QuayAuth); err != nil {
			log.WithError(err).Warn("Quay login failed, continuing without it")
		}
	}
	return nil
}
