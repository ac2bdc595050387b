//go:build windows

package path

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"unsafe"

	"github.com/shellpm/spm/src/internal/ui"
	"golang.org/x/sys/windows/registry"
)

var (
	moduser32              = syscall.NewLazyDLL("user32.dll")
	procSendMessageTimeout = moduser32.NewProc("SendMessageTimeoutW")
)

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// AddToPath prepends binDir to the user's PATH in the registry after confirmation
func AddToPath(binDir string) error {
	if IsInPath(binDir) {
		ui.Info("%s is already in your PATH", binDir)
		return nil
	}

	ui.Header("PATH Setup")
	ui.Info("spm exposes registered packages through %s", ui.Highlight(binDir))
	ui.Info("This will modify your user PATH environment variable")

	if !ui.Confirm("Proceed?", true) {
		ui.Warning("PATH not modified. You can add it later by running: spm setup")
		return nil
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open registry key: %w", err)
	}
	defer func() { _ = key.Close() }()

	currentPath, _, err := key.GetStringValue("Path")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to read current PATH: %w", err)
	}

	for _, p := range strings.Split(currentPath, ";") {
		if strings.EqualFold(strings.TrimSpace(p), binDir) {
			ui.Info("%s is already in your registry PATH", binDir)
			return nil
		}
	}

	newPath := binDir
	if currentPath != "" {
		newPath += ";" + currentPath
	}

	if err := key.SetStringValue("Path", newPath); err != nil {
		return fmt.Errorf("failed to update PATH in registry: %w", err)
	}

	broadcastSettingChange()

	ui.Success("Added %s to your PATH", binDir)
	ui.Warning("Please restart your terminal for the changes to take effect")
	return nil
}

// broadcastSettingChange notifies running processes that the environment changed
func broadcastSettingChange() {
	env := syscall.StringToUTF16Ptr("Environment")
	_, _, _ = procSendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		5000,
		0,
	)
}

// DetectShell returns "powershell" or "cmd"
func DetectShell() string {
	if os.Getenv("PSModulePath") != "" {
		return "powershell"
	}
	return "cmd"
}
