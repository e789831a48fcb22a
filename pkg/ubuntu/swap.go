package ubuntu

import (
	"os"
	"strings"

	"github.com/bitfield/script"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/pkg/constants"
	"github.com/kubestrap/kubestrap/pkg/utils"
)

// DisableSwap turns swap off and comments out the swap entries in
// /etc/fstab so the change survives a reboot. The kubelet refuses to
// start with swap enabled.
func DisableSwap() error {
	log.Info("Disabling swap")
	if out, err := utils.Exec.Run(true, constants.SwapoffCmd, "-a"); err != nil {
		return errors.Wrapf(err, "Error while disabling swap: %s", string(out))
	}
	return RemoveSwapFromFstab(constants.FstabPath)
}

// RemoveSwapFromFstab comments out every active swap mount in path.
// Lines already commented are left alone.
func RemoveSwapFromFstab(path string) error {
	lines, err := utils.FS.Pipe(path).Slice()
	if err != nil {
		return errors.Wrapf(err, "While reading %s", path)
	}

	changed := false
	for i, line := range lines {
		if isSwapEntry(line) {
			lines[i] = "# " + line
			changed = true
		}
	}
	if !changed {
		return nil
	}

	log.WithField("file", path).Info("Removing swap entries")
	if _, err := utils.FS.WritePipe(path, script.Slice(lines),
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644); err != nil {
		return errors.Wrapf(err, "While writing %s", path)
	}
	return nil
}

func isSwapEntry(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	fields := strings.Fields(trimmed)
	return len(fields) >= 3 && fields[2] == "swap"
}
