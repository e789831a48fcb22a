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
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/utils"
)

// ExportKubeconfig writes the cluster kubeconfig, renamed to
// clusterName, into dir as "kubeconfig" and extracts the CA and client
// certificates next to it in both PEM and DER encodings.
func (config *Config) ExportKubeconfig(dir, clusterName string) error {
	renamed := config.RenameConfig(clusterName)

	target := filepath.Join(dir, "kubeconfig")
	log.WithField("file", target).Info("Exporting kubeconfig")
	if err := renamed.WriteToFile(target); err != nil {
		return errors.Wrapf(err, "While writing %s", target)
	}
	// Tightening the mode is best effort; some target filesystems
	// (9p, vfat) do not support it.
	if err := utils.FS.Chmod(target, 0600); err != nil {
		log.WithError(err).Warn("Could not restrict kubeconfig permissions")
	}

	if err := renamed.exportCertificates(dir); err != nil {
		return err
	}

	for _, cluster := range renamed.Clusters {
		log.WithFields(log.Fields{
			"server":  cluster.Server,
			"context": renamed.CurrentContext,
		}).Info("Cluster connection information")
	}
	return nil
}

func (config *Config) exportCertificates(dir string) error {
	var caData, clientData []byte
	for _, cluster := range config.Clusters {
		caData = cluster.CertificateAuthorityData
	}
	for _, auth := range config.AuthInfos {
		clientData = auth.ClientCertificateData
	}

	if err := writeCertificate(dir, "ca.crt", caData); err != nil {
		return err
	}
	return writeCertificate(dir, "client.crt", clientData)
}

// writeCertificate writes pemData as <name>.pem and its DER payload as
// <name>.der after checking that it actually parses as a certificate.
func writeCertificate(dir, name string, pemData []byte) error {
	if len(pemData) == 0 {
		return fmt.Errorf("no certificate data for %s", name)
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return fmt.Errorf("invalid PEM data for %s", name)
	}
	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return errors.Wrapf(err, "While parsing certificate %s", name)
	}

	pemPath := filepath.Join(dir, name+".pem")
	if err := utils.FS.WriteFile(pemPath, pemData, 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", pemPath)
	}

	derPath := filepath.Join(dir, name+".der")
	if err := utils.FS.WriteFile(derPath, block.Bytes, 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", derPath)
	}

	log.WithFields(log.Fields{
		"pem": pemPath,
		"der": derPath,
	}).Info("Exported certificate")
	return nil
}
