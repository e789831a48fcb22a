package ubuntu

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// IsServiceActive reports whether the systemd unit is currently active.
func IsServiceActive(serviceName string) (bool, error) {
	out, err := utils.Exec.Run(false, constants.SystemctlCmd, "is-active", serviceName)
	state := strings.TrimSpace(string(out))
	if err != nil {
		// is-active exits non-zero for any state but "active"
		return false, nil
	}
	return state == "active", nil
}

// EnableService enables the unit so it starts at boot.
func EnableService(serviceName string) error {
	if out, err := utils.Exec.Run(true, constants.SystemctlCmd, "enable", serviceName); err != nil {
		return errors.Wrapf(err, "Error while enabling service %s: %s", serviceName, string(out))
	}
	return nil
}

// StartService starts the unit if it is not already active.
func StartService(serviceName string) error {
	active, err := IsServiceActive(serviceName)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	log.WithField("service", serviceName).Info("Starting service")
	if out, err := utils.Exec.Run(true, constants.SystemctlCmd, "start", serviceName); err != nil {
		return errors.Wrapf(err, "Error while starting service %s: %s", serviceName, string(out))
	}
	return nil
}

// RestartService restarts the unit. With bestEffort, a failure is logged
// and swallowed; some units (containerd right after installation) take a
// restart badly without it being fatal for the bootstrap.
func RestartService(serviceName string, bestEffort bool) error {
	log.WithField("service", serviceName).Info("Restarting service")
	out, err := utils.Exec.Run(true, constants.SystemctlCmd, "restart", serviceName)
	if err != nil {
		if bestEffort {
			log.WithError(err).WithField("service", serviceName).Warn(string(out))
			return nil
		}
		return errors.Wrapf(err, "Error while restarting service %s: %s", serviceName, string(out))
	}
	return nil
}

// StopService stops the unit.
func StopService(serviceName string) error {
	if out, err := utils.Exec.Run(true, constants.SystemctlCmd, "stop", serviceName); err != nil {
		return errors.Wrapf(err, "Error while stopping service %s: %s", serviceName, string(out))
	}
	return nil
}

// DaemonReload reloads the systemd manager configuration.
func DaemonReload() error {
	if out, err := utils.Exec.Run(true, constants.SystemctlCmd, "daemon-reload"); err != nil {
		return errors.Wrapf(err, "Error while reloading systemd: %s", string(out))
	}
	return nil
}
