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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubestrap/kubestrap/pkg/constants"
)

type Config api.Config

// LoadFromFile loads the configuration from the file specified by filename.
func LoadFromFile(filename string) (*Config, error) {
	_config, err := clientcmd.LoadFromFile(filename)
	if err != nil {
		return nil, err
	}
	config := (*Config)(_config)
	return config, nil
}

// LoadFromDefault loads the configuration from the admin.conf file that
// kubeadm init leaves in /etc/kubernetes.
func LoadFromDefault() (*Config, error) {
	return LoadFromFile(constants.AdminKubeConfigPath)
}

// RenameConfig changes the name of the cluster and the context from the
// default (kubernetes) to newName in c.
func (c *Config) RenameConfig(newName string) *Config {
	newUsers := make(map[string]*api.AuthInfo)
	for _, v := range c.AuthInfos {
		newUsers[newName] = v
	}
	c.AuthInfos = newUsers

	newClusters := make(map[string]*api.Cluster)
	for _, v := range c.Clusters {
		newClusters[newName] = v
	}
	c.Clusters = newClusters

	newContexts := make(map[string]*api.Context)
	for _, v := range c.Contexts {
		newContexts[newName] = v
		v.Cluster = newName
		v.AuthInfo = newName
	}
	c.Contexts = newContexts

	c.CurrentContext = newName
	return c
}

// IsConfigServerAddress checks that config points to the server at the
// given address.
func (config *Config) IsConfigServerAddress(address string) bool {
	expectedURL := fmt.Sprintf("https://%v:%d", address, constants.APIServerBindPort)
	for _, cluster := range config.Clusters {
		if cluster.Server != expectedURL {
			return false
		}
	}
	return true
}

// Client returns a clientset for config.
func (config *Config) Client() (client *kubernetes.Clientset, err error) {
	clientConfig := clientcmd.NewDefaultClientConfig(api.Config(*config), nil)
	var rest *rest.Config
	rest, err = clientConfig.ClientConfig()
	if err != nil {
		return client, err
	}
	client, err = kubernetes.NewForConfig(rest)
	return client, err
}

// CheckClusterRunning checks that the cluster is running by requesting
// the API server /readyz endpoint. It checks retries times and waits for
// waitTime milliseconds between each check. It needs at least okResponses
// good responses from the server.
func (config *Config) CheckClusterRunning(retries, okResponses, waitTime int) error {
	client, err := config.Client()
	if err != nil {
		return err
	}

	okTries := 0
	query := client.Discovery().RESTClient().Get().AbsPath("/readyz")
	for retries > 0 {
		var content []byte
		content, err = query.DoRaw(context.Background())
		if err == nil {
			contentStr := string(content)
			if contentStr != "ok" {
				err = fmt.Errorf("cluster health API returned: %s", contentStr)
				log.WithError(err).Debug("Bad response")
			} else {
				okTries = okTries + 1
				log.WithField("okTries", okTries).Trace("Ok response from server")
				if okTries == okResponses {
					break
				}
			}
		} else {
			log.WithError(err).Debug("while querying cluster readiness")
		}

		retries = retries - 1
		if retries == 0 {
			log.Trace("No more retries left.")
			return err
		} else {
			log.WithFields(log.Fields{
				"err":       err,
				"wait_time": waitTime,
			}).Debug("Waiting...")
			time.Sleep(time.Duration(waitTime) * time.Millisecond)
		}
	}

	return err
}

// WriteToFile writes the config configuration to the file pointed by
// filename.
func (config *Config) WriteToFile(filename string) error {
	return clientcmd.WriteToFile(*(*api.Config)(config), filename)
}

// InstallUserKubeConfig copies admin.conf to $HOME/.kube/config so that
// kubectl works from the root account without KUBECONFIG gymnastics.
func InstallUserKubeConfig(config *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	target := filepath.Join(home, ".kube", "config")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	log.WithField("file", target).Info("Installing kubeconfig")
	return config.WriteToFile(target)
}
