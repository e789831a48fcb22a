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

// Package addons installs the cluster addons (Calico, MetalLB) through
// the Helm SDK. Chart downloads are retried with exponential backoff;
// an install that still fails afterwards is fatal for the bootstrap.
package addons

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"

	"github.com/kubestrap/kubestrap/pkg/k8s"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// ChartSpec names a chart to install and where to find it.
type ChartSpec struct {
	ReleaseName string
	Repository  string
	Name        string
	Version     string
	Namespace   string
}

// HelmClient drives chart installations against the cluster.
type HelmClient struct {
	config *k8s.Config
}

func NewHelmClient(config *k8s.Config) *HelmClient {
	return &HelmClient{config: config}
}

func (c *HelmClient) actionConfig(namespace string) (*action.Configuration, error) {
	actionConfig := new(action.Configuration)
	getter := c.config.RESTClient()
	// Helm debug output goes to our trace level.
	logFn := func(format string, v ...interface{}) { log.Tracef(format, v...) }
	if err := actionConfig.Init(getter, namespace, "secret", logFn); err != nil {
		return nil, errors.Wrap(err, "While initializing the helm action configuration")
	}
	return actionConfig, nil
}

// loadChart locates and downloads the chart, retrying with backoff.
// Chart repositories throttle and flake; three attempts with a doubling
// delay ride out the transient failures.
func (c *HelmClient) loadChart(ctx context.Context, spec *ChartSpec) (*chart.Chart, error) {
	settings := cli.New()

	var chartPath string
	err := utils.RetryWithBackoff(ctx, utils.DefaultRetryConfig, func() error {
		var err error
		chartPath, err = repo.FindChartInRepoURL(
			spec.Repository,
			spec.Name,
			spec.Version,
			"", "", "",
			getter.All(settings),
		)
		if err != nil {
			log.WithError(err).WithField("chart", spec.Name).Warn("Chart download failed, retrying")
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "While locating chart %s in %s", spec.Name, spec.Repository)
	}

	defer func() {
		_ = os.Remove(chartPath)
	}()
	loaded, err := loader.Load(chartPath)
	if err != nil {
		return nil, errors.Wrapf(err, "While loading chart %s", chartPath)
	}
	return loaded, nil
}

// InstallOrUpgrade installs the chart or upgrades the release when it
// already exists, waiting for the release workloads to become ready.
func (c *HelmClient) InstallOrUpgrade(ctx context.Context, spec *ChartSpec, values map[string]interface{}) error {
	actionConfig, err := c.actionConfig(spec.Namespace)
	if err != nil {
		return err
	}

	loaded, err := c.loadChart(ctx, spec)
	if err != nil {
		return err
	}

	histClient := action.NewHistory(actionConfig)
	histClient.Max = 1
	_, histErr := histClient.Run(spec.ReleaseName)

	log.WithFields(log.Fields{
		"release": spec.ReleaseName,
		"chart":   spec.Name,
		"version": spec.Version,
	}).Info("Installing chart")

	if histErr != nil {
		installClient := action.NewInstall(actionConfig)
		installClient.ReleaseName = spec.ReleaseName
		installClient.Namespace = spec.Namespace
		installClient.CreateNamespace = true
		installClient.Version = spec.Version
		installClient.Wait = true
		installClient.Timeout = 10 * time.Minute

		if _, err = installClient.RunWithContext(ctx, loaded, values); err != nil {
			return errors.Wrapf(err, "While installing release %s", spec.ReleaseName)
		}
		return nil
	}

	upgradeClient := action.NewUpgrade(actionConfig)
	upgradeClient.Namespace = spec.Namespace
	upgradeClient.Version = spec.Version
	upgradeClient.Wait = true
	upgradeClient.Timeout = 10 * time.Minute

	if _, err = upgradeClient.RunWithContext(ctx, spec.ReleaseName, loaded, values); err != nil {
		return errors.Wrapf(err, "While upgrading release %s", spec.ReleaseName)
	}
	return nil
}
