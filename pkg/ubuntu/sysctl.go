package ubuntu

import (
	"github.com/lithammer/dedent"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

var sysctlDropIn = dedent.Dedent(`
	net.bridge.bridge-nf-call-iptables  = 1
	net.bridge.bridge-nf-call-ip6tables = 1
	net.ipv4.ip_forward                 = 1
	`)[1:]

// TuneSysctl writes the kubeadm required kernel parameters to a
// sysctl.d drop-in and applies them immediately.
func TuneSysctl() error {
	log.WithField("file", constants.SysctlDropInPath).Info("Tuning sysctl")
	if err := utils.FS.WriteFile(constants.SysctlDropInPath, []byte(sysctlDropIn), 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", constants.SysctlDropInPath)
	}

	if out, err := utils.Exec.Run(true, constants.SysctlCmd, "--system"); err != nil {
		return errors.Wrapf(err, "Error while applying sysctl settings: %s", string(out))
	}
	return nil
}
