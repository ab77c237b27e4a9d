package thumbnails

import (
	"fmt"
	"os"
	"path/filepath"
)

// diskPath returns the sharded on-disk location for a thumbnail: two
// digits of shard directory cap per-directory file counts (spec.md §4.7
// "Disk layout").
func diskPath(root string, fileID int64) string {
	shard := fileID % 100
	if shard < 0 {
		shard = -shard
	}
	return filepath.Join(root, fmt.Sprintf("%02d", shard), fmt.Sprintf("%d.jpg", fileID))
}

func writeThumbnail(root string, fileID int64, data []byte) (string, error) {
	path := diskPath(root, fileID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func diskFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func deleteDiskFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
