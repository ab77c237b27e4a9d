//go:build linux

package volumes

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// posixLister enumerates mounted filesystems from /proc/mounts, the way
// the teacher's volume_scanner.go already imports "syscall" for low-level
// filesystem probing. It filters out the system disk and pseudo
// filesystems, and derives a stable-enough identifier from statfs(2)'s
// filesystem id when the OS offers no better handle (no DiskArbitration or
// udev binding is available from the standard library or the retrieval
// pack; see DESIGN.md).
type posixLister struct {
	// rootsToSkip are mount points treated as "the system disk" and never
	// surfaced as indexable volumes.
	rootsToSkip map[string]bool
	// prefixesToSkip catches pseudo-filesystems mounted under well-known
	// virtual roots.
	prefixesToSkip []string
}

// NewPOSIXLister returns the default Linux mount-table lister.
func NewPOSIXLister() Lister {
	return &posixLister{
		rootsToSkip: map[string]bool{
			"/": true, "/boot": true, "/boot/efi": true,
		},
		prefixesToSkip: []string{
			"/proc", "/sys", "/dev", "/run", "/snap", "/var/lib/docker",
		},
	}
}

func (l *posixLister) List(ctx context.Context) ([]MountInfo, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("open /proc/mounts: %w", err)
	}
	defer f.Close()

	var out []MountInfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mountPath := unescapeMountField(fields[1])
		fsType := fields[2]

		if l.shouldSkip(mountPath, fsType) {
			continue
		}

		var stat unix.Statfs_t
		if err := unix.Statfs(mountPath, &stat); err != nil {
			continue
		}

		out = append(out, MountInfo{
			ID:         fsidString(stat.Fsid),
			Name:       filepath.Base(mountPath),
			MountPath:  mountPath,
			TotalBytes: int64(stat.Blocks) * int64(stat.Bsize),
			UsedBytes:  int64(stat.Blocks-stat.Bfree) * int64(stat.Bsize),
		})
	}
	return out, scanner.Err()
}

func (l *posixLister) shouldSkip(mountPath, fsType string) bool {
	if l.rootsToSkip[mountPath] {
		return true
	}
	for _, prefix := range l.prefixesToSkip {
		if strings.HasPrefix(mountPath, prefix) {
			return true
		}
	}
	switch fsType {
	case "proc", "sysfs", "devtmpfs", "tmpfs", "devpts", "cgroup", "cgroup2", "overlay", "squashfs", "autofs", "mqueue", "debugfs", "tracefs", "securityfs", "pstore", "bpf", "configfs", "fusectl":
		return true
	}
	return false
}

func fsidString(fsid unix.Fsid) string {
	return fmt.Sprintf("%08x%08x", uint32(fsid.Val[0]), uint32(fsid.Val[1]))
}

// unescapeMountField decodes the octal escapes /proc/mounts uses for
// spaces, tabs, and backslashes in mount paths.
func unescapeMountField(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			var v int
			if _, err := fmt.Sscanf(s[i+1:i+4], "%o", &v); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
