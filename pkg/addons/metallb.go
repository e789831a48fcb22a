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
package addons

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/k8s"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

const (
	MetalLBNamespace = "metallb-system"
	AddressPoolName  = "default-pool"
	L2AdvertName     = "default-l2"
)

// MetalLBChart installs the load balancer controller and speakers.
var MetalLBChart = ChartSpec{
	ReleaseName: "metallb",
	Repository:  "https://metallb.github.io/metallb",
	Name:        "metallb",
	Version:     constants.MetalLBChartVersion,
	Namespace:   MetalLBNamespace,
}

var (
	addressPoolResource = schema.GroupVersionResource{
		Group: "metallb.io", Version: "v1beta1", Resource: "ipaddresspools",
	}
	l2AdvertResource = schema.GroupVersionResource{
		Group: "metallb.io", Version: "v1beta1", Resource: "l2advertisements",
	}
)

// InstallMetalLB installs the chart. The address pool is applied
// separately, once kube-system has settled (the CRDs and webhook the
// pool depends on are only usable then).
func InstallMetalLB(ctx context.Context, config *k8s.Config) error {
	client := NewHelmClient(config)
	return client.InstallOrUpgrade(ctx, &MetalLBChart, nil)
}

// BuildAddressPool builds the IPAddressPool custom resource for the
// given address range.
func BuildAddressPool(addressRange string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "metallb.io/v1beta1",
		"kind":       "IPAddressPool",
		"metadata": map[string]interface{}{
			"name":      AddressPoolName,
			"namespace": MetalLBNamespace,
		},
		"spec": map[string]interface{}{
			"addresses": []interface{}{addressRange},
		},
	}}
}

// BuildL2Advertisement builds the L2Advertisement announcing the pool.
func BuildL2Advertisement() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "metallb.io/v1beta1",
		"kind":       "L2Advertisement",
		"metadata": map[string]interface{}{
			"name":      L2AdvertName,
			"namespace": MetalLBNamespace,
		},
		"spec": map[string]interface{}{
			"ipAddressPools": []interface{}{AddressPoolName},
		},
	}}
}

// RenderAddressPoolManifest renders the pool and advertisement as a
// multi-document YAML manifest, kept on disk for inspection and manual
// re-application.
func RenderAddressPoolManifest(addressRange string) ([]byte, error) {
	pool, err := yaml.Marshal(BuildAddressPool(addressRange).Object)
	if err != nil {
		return nil, errors.Wrap(err, "While marshalling address pool")
	}
	advert, err := yaml.Marshal(BuildL2Advertisement().Object)
	if err != nil {
		return nil, errors.Wrap(err, "While marshalling l2 advertisement")
	}
	manifest := append(pool, []byte("---\n")...)
	manifest = append(manifest, advert...)
	return manifest, nil
}

// WriteAddressPoolManifest writes the rendered manifest to path.
func WriteAddressPoolManifest(addressRange, path string) error {
	manifest, err := RenderAddressPoolManifest(addressRange)
	if err != nil {
		return err
	}
	return utils.FS.WriteFile(path, manifest, 0644)
}

func applyResource(ctx context.Context, config *k8s.Config, gvr schema.GroupVersionResource, obj *unstructured.Unstructured) error {
	client, err := config.DynamicClient()
	if err != nil {
		return err
	}

	resource := client.Resource(gvr).Namespace(obj.GetNamespace())
	if _, err = resource.Create(ctx, obj, metav1.CreateOptions{}); err != nil {
		if !apierrors.IsAlreadyExists(err) {
			return errors.Wrapf(err, "While creating %s/%s", obj.GetKind(), obj.GetName())
		}
		existing, err := resource.Get(ctx, obj.GetName(), metav1.GetOptions{})
		if err != nil {
			return errors.Wrapf(err, "While fetching existing %s/%s", obj.GetKind(), obj.GetName())
		}
		obj.SetResourceVersion(existing.GetResourceVersion())
		if _, err = resource.Update(ctx, obj, metav1.UpdateOptions{}); err != nil {
			return errors.Wrapf(err, "While updating %s/%s", obj.GetKind(), obj.GetName())
		}
	}
	return nil
}

// ApplyAddressPool applies the IPAddressPool and the matching
// L2Advertisement. Callers must only invoke it after kube-system has
// settled; applying earlier races the MetalLB admission webhook.
func ApplyAddressPool(ctx context.Context, config *k8s.Config, addressRange string) error {
	log.WithField("range", addressRange).Info("Applying MetalLB address pool")

	if err := applyResource(ctx, config, addressPoolResource, BuildAddressPool(addressRange)); err != nil {
		return err
	}
	return applyResource(ctx, config, l2AdvertResource, BuildL2Advertisement())
}
