package constants

// Directory names under the spm root
const (
	RootDirName     = ".spm"
	PackagesDirName = "packages"
	BinDirName      = "bin"
	TmpDirName      = "tmp"
	LocksDirName    = "locks"
	ConfigFileName  = "config.yaml"
)

// Package layout
const (
	ManifestFileName    = "package.json"
	DependenciesDirName = "dependencies"
	SourceDirName       = "src"
	StdDirName          = "std"
	IncludeFileName     = "include.sh"
	MainEntrypoint      = "main.sh"
	LibraryEntrypoint   = "lib.sh"
	SetupScriptName     = "install.sh"
	UninstallScriptName = "uninstall.sh"
)

// Manifest defaults
const (
	DefaultNamespace   = "default-namespace"
	DefaultDescription = "Default description"
	DefaultVersion     = "0.1.0"
	LocalNamespace     = "local"
)

// DefaultBaseURL is the git host used for user/repo install specs
const DefaultBaseURL = "https://github.com"
