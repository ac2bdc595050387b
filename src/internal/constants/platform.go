// Package constants defines common constants used across spm
package constants

// Operating systems
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// Shell types used when configuring the user's PATH
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// User responses
const (
	ResponseYes = "yes"
	ResponseY   = "y"
	ResponseNo  = "no"
	ResponseN   = "n"
)

// File extensions
const (
	ExtCmd = ".cmd"
	ExtSh  = ".sh"
)
