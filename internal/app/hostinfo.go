package app

import (
	"os"
	"path/filepath"
	"strings"

	"dropgate/internal/config"
)

// deviceName resolves the identity announced to peers: config override first,
// then the OS hostname.
func deviceName(cfg *config.Config) string {
	if name := strings.TrimSpace(cfg.Device.Name); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "dropgate-host"
	}
	return host
}

// storageRoot resolves where accepted files land: config override first, then
// the user's downloads directory, then ./downloads. The directory is created
// if missing so the core never starts against a non-existent path.
func storageRoot(cfg *config.Config) (string, error) {
	dir := strings.TrimSpace(cfg.Transfer.StoragePath)
	if dir == "" {
		dir = downloadsDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func downloadsDir() string {
	if v := os.Getenv("XDG_DOWNLOAD_DIR"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(home, "Downloads")
}
