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
	"bytes"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/apis/kubestrap/v1alpha1"
	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// StripRegistry removes the registry prefix from an image reference.
// The first path segment is a registry when it contains a dot or a
// port, which is how the runtimes themselves disambiguate.
func StripRegistry(image string) string {
	slash := strings.Index(image, "/")
	if slash < 0 {
		return image
	}
	first := image[:slash]
	if strings.ContainsAny(first, ".:") || first == "localhost" {
		return image[slash+1:]
	}
	return image
}

// crictlPull pulls ref through the CRI, with credentials for
// authenticated registries.
func crictlPull(ref string, auth *v1alpha1.RegistryAuth) error {
	args := []string{"--runtime-endpoint", "unix://" + constants.ContainerServiceSock, "pull"}
	if auth != nil && auth.IsSet() {
		args = append(args, "--creds", auth.User+":"+auth.Token)
	}
	args = append(args, ref)
	out, err := utils.Exec.Run(true, constants.CrictlCmd, args...)
	if err != nil {
		log.WithError(err).WithField("image", ref).Debug(string(out))
	}
	return err
}

// dockerImport pulls ref with the docker client and imports the saved
// tarball into the k8s.io containerd namespace. This is the fallback
// path for registries the CRI cannot reach directly.
func dockerImport(ref string) error {
	if out, err := utils.Exec.Run(true, constants.DockerCmd, "pull", ref); err != nil {
		log.WithError(err).WithField("image", ref).Debug(string(out))
		return err
	}

	tarball, err := utils.Exec.Run(false, constants.DockerCmd, "save", ref)
	if err != nil {
		return err
	}

	out, err := utils.Exec.Pipe(bytes.NewReader(tarball), true, constants.CtrCmd,
		"-n", "k8s.io", "images", "import", "-")
	if err != nil {
		log.WithError(err).WithField("image", ref).Debug(string(out))
	}
	return err
}

// pullWithFallback tries the candidate registries in order for a single
// image. Only docker.io is pulled with credentials. When the CRI pull
// fails for a candidate, the docker pull and import path is tried
// before moving on to the next registry.
func pullWithFallback(image string, spec *v1alpha1.BootstrapClusterSpec) *v1alpha1.ImagePullState {
	bare := StripRegistry(image)

	for _, reg := range constants.RegistryFallbackOrder {
		ref := reg + "/" + bare

		var auth *v1alpha1.RegistryAuth
		if reg == constants.DockerRegistry {
			auth = &spec.DockerAuth
		}

		if err := crictlPull(ref, auth); err == nil {
			return &v1alpha1.ImagePullState{Image: image, Registry: reg, Ok: true}
		}
		if err := dockerImport(ref); err == nil {
			return &v1alpha1.ImagePullState{Image: image, Registry: reg, Ok: true, Message: "imported through docker"}
		}
		log.WithFields(log.Fields{
			"image":    bare,
			"registry": reg,
		}).Debug("Pull failed, trying next registry")
	}

	return &v1alpha1.ImagePullState{
		Image:   image,
		Ok:      false,
		Message: "all candidate registries exhausted",
	}
}

// Prepull pulls the given images ahead of pod scheduling so that CNI
// and load-balancer bring-up does not stall on registry rate limits.
// The outcome is purely informational: bring-up proceeds regardless,
// the runtime pulls on demand when pods are scheduled.
func Prepull(images []string, spec *v1alpha1.BootstrapClusterSpec) []*v1alpha1.ImagePullState {
	results := make([]*v1alpha1.ImagePullState, 0, len(images))
	failed := 0
	for _, image := range images {
		result := pullWithFallback(image, spec)
		if result.Ok {
			log.WithFields(log.Fields{
				"image":    image,
				"registry": result.Registry,
			}).Info("Image pre-pulled")
		} else {
			failed++
			log.WithField("image", image).Warn("Image pre-pull failed, the runtime will pull on demand")
		}
		results = append(results, result)
	}

	log.WithFields(log.Fields{
		"total":  len(images),
		"failed": failed,
	}).Info("Image pre-pull finished")
	return results
}
