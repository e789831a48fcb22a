package ubuntu

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// KernelModules are required by containerd (overlay) and by the bridge
// netfilter sysctls (br_netfilter).
var KernelModules = []string{"overlay", "br_netfilter"}

// LoadKernelModules loads the required modules now and persists them in
// a modules-load.d drop-in for the next boot.
func LoadKernelModules() error {
	for _, module := range KernelModules {
		log.WithField("module", module).Debug("Loading kernel module")
		if out, err := utils.Exec.Run(true, constants.ModprobeCmd, module); err != nil {
			return errors.Wrapf(err, "Error while loading module %s: %s", module, string(out))
		}
	}

	content := strings.Join(KernelModules, "\n") + "\n"
	if err := utils.FS.WriteFile(constants.ModulesLoadPath, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", constants.ModulesLoadPath)
	}
	return nil
}
