package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// UnavailableError is returned when no clipboard utility can be found
type UnavailableError struct {
	OS string
}

func (e *UnavailableError) Error() string {
	return "no clipboard utility found. " + InstallInstructions(e.OS)
}

// tool is one clipboard command line
type tool struct {
	name string
	args []string
}

// tools lists candidates per platform in order of preference
var tools = map[string][]tool{
	"darwin":  {{name: "pbcopy"}},
	"windows": {{name: "clip"}},
	"linux": {
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	},
}

// Copier writes text to the system clipboard through external utilities
type Copier struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args []string, stdin string) error
}

// New returns a Copier for the running platform
func New() *Copier {
	return &Copier{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Run()
}

// Available reports whether any clipboard utility is installed
func (c *Copier) Available() bool {
	for _, t := range tools[c.goos] {
		if _, err := c.lookPath(t.name); err == nil {
			return true
		}
	}
	return false
}

// Copy tries each installed utility until one succeeds
func (c *Copier) Copy(text string) error {
	var lastErr error
	for _, t := range tools[c.goos] {
		if _, err := c.lookPath(t.name); err != nil {
			continue
		}
		if err := c.run(t.name, t.args, text); err != nil {
			lastErr = fmt.Errorf("%s failed: %w", t.name, err)
			continue
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("clipboard utilities available but failed: %w", lastErr)
	}
	return &UnavailableError{OS: c.goos}
}

// Copy copies text using the platform clipboard
func Copy(text string) error {
	return New().Copy(text)
}

// CopyWithStatus copies text and returns a message for the status line
func CopyWithStatus(text string) (string, error) {
	if err := Copy(text); err != nil {
		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			return "", err
		}
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return "Copied to clipboard!", nil
}

// InstallInstructions explains how to get a clipboard utility on goos
func InstallInstructions(goos string) string {
	switch goos {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy should be available by default on macOS"
	case "windows":
		return "clip should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", goos)
	}
}
