package counters

import (
	"fmt"
	"strings"

	"github.com/prometheus/procfs"
)

// Volume is a mounted filesystem a storage probe could target.
type Volume struct {
	Device     string
	MountPoint string
	FSType     string
}

var pseudoFS = map[string]struct{}{
	"proc": {}, "sysfs": {}, "cgroup": {}, "cgroup2": {}, "devpts": {},
	"mqueue": {}, "debugfs": {}, "tracefs": {}, "securityfs": {}, "pstore": {},
	"bpf": {}, "configfs": {}, "fusectl": {}, "hugetlbfs": {}, "autofs": {},
	"binfmt_misc": {}, "nsfs": {},
}

// ListVolumes reads the mount table of the current process from procPath and
// drops kernel pseudo filesystems.
func ListVolumes(procPath string) ([]Volume, error) {
	if procPath == "" {
		procPath = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(procPath)
	if err != nil {
		return nil, err
	}
	self, err := fs.Self()
	if err != nil {
		return nil, fmt.Errorf("resolve self: %w", err)
	}
	mounts, err := self.MountInfo()
	if err != nil {
		return nil, fmt.Errorf("read mountinfo: %w", err)
	}

	out := make([]Volume, 0, len(mounts))
	for _, m := range mounts {
		if _, skip := pseudoFS[m.FSType]; skip {
			continue
		}
		if strings.HasPrefix(m.MountPoint, "/proc/") || strings.HasPrefix(m.MountPoint, "/sys/") {
			continue
		}
		out = append(out, Volume{Device: m.Source, MountPoint: m.MountPoint, FSType: m.FSType})
	}
	return out, nil
}
