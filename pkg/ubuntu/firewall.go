package ubuntu

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// ConfigureFirewall either disables ufw entirely (the default) or, when
// open is true, keeps it enabled and allows the Kubernetes and MetalLB
// ports through.
func ConfigureFirewall(open bool) error {
	if !open {
		log.Info("Disabling ufw firewall")
		if out, err := utils.Exec.Run(true, constants.UfwCmd, "disable"); err != nil {
			return errors.Wrapf(err, "Error while disabling ufw: %s", string(out))
		}
		return nil
	}

	log.Info("Opening Kubernetes ports in ufw")
	for _, port := range constants.FirewallTCPPorts {
		if out, err := utils.Exec.Run(true, constants.UfwCmd, "allow", port+"/tcp"); err != nil {
			return errors.Wrapf(err, "Error while allowing port %s: %s", port, string(out))
		}
	}
	if out, err := utils.Exec.Run(true, constants.UfwCmd, "--force", "enable"); err != nil {
		return errors.Wrapf(err, "Error while enabling ufw: %s", string(out))
	}
	return nil
}
