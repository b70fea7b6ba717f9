// Package shellreg registers the application with the desktop shell.
//
// Notification servers route (and some refuse to display) notifications by
// sender identity, so a desktop entry matching the identity we pass in the
// desktop-entry hint must exist before the first notification is posted.
// Registration is best-effort: a failure degrades notification routing but
// never stops the host.
package shellreg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Entry describes the desktop entry to install.
type Entry struct {
	Identity string // entry id, e.g. dev.dropgate.Host
	Name     string // display name
	Icon     string // icon name or path, optional
	Exec     string // command line, defaults to the running executable
}

// Register installs (or refreshes) the per-user desktop entry. It is
// idempotent: when the on-disk entry already matches, nothing is written and
// changed is false.
func Register(e Entry) (path string, changed bool, err error) {
	if e.Identity == "" {
		return "", false, fmt.Errorf("empty identity")
	}
	if e.Exec == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", false, fmt.Errorf("resolve executable: %w", err)
		}
		e.Exec = exe
	}

	dir := filepath.Join(dataHome(), "applications")
	path = filepath.Join(dir, e.Identity+".desktop")
	want := render(e)

	if have, err := os.ReadFile(path); err == nil && bytes.Equal(have, want) {
		return path, false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, false, fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		return path, false, fmt.Errorf("write %s: %w", path, err)
	}
	return path, true, nil
}

func render(e Entry) []byte {
	var b bytes.Buffer
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", e.Name)
	fmt.Fprintf(&b, "Exec=%s\n", e.Exec)
	if e.Icon != "" {
		fmt.Fprintf(&b, "Icon=%s\n", e.Icon)
	}
	// Background service, not a launcher item.
	b.WriteString("NoDisplay=true\n")
	b.WriteString("X-GNOME-UsesNotifications=true\n")
	return b.Bytes()
}

func dataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share"
	}
	return filepath.Join(home, ".local", "share")
}
