// Package manifest reads, validates and writes package.json manifests and the
// dependency references they carry.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/shell"
)

// InstallOptions controls what happens when a package is installed
type InstallOptions struct {
	SetupScript               string `json:"setup_script"`
	RegisterToEnvironmentTool bool   `json:"register_to_environment_tool"`
}

// Manifest is the declarative description of a package
type Manifest struct {
	Name        string
	Description string
	Version     string
	// Namespace is empty when the package has none
	Namespace    string
	Interpreter  shell.Interpreter
	Entrypoint   string
	Install      InstallOptions
	Uninstall    string
	IsLibrary    bool
	Dependencies Dependencies
}

// manifestJSON is the on-disk shape; namespace is nullable
type manifestJSON struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Version      string            `json:"version"`
	Namespace    *string           `json:"namespace"`
	Interpreter  shell.Interpreter `json:"interpreter"`
	Entrypoint   string            `json:"entrypoint"`
	Install      InstallOptions    `json:"install"`
	Uninstall    string            `json:"uninstall"`
	IsLibrary    bool              `json:"is_library"`
	Dependencies Dependencies      `json:"dependencies"`
}

// New returns a manifest with defaults in the default namespace
func New(name string, isLibrary bool, interp shell.Interpreter) *Manifest {
	return NewWithNamespace(name, constants.DefaultNamespace, isLibrary, interp)
}

// NewWithNamespace returns a manifest with defaults in the given namespace
func NewWithNamespace(name, namespace string, isLibrary bool, interp shell.Interpreter) *Manifest {
	entrypoint := constants.MainEntrypoint
	if isLibrary {
		entrypoint = constants.LibraryEntrypoint
	}
	return &Manifest{
		Name:        name,
		Description: constants.DefaultDescription,
		Version:     constants.DefaultVersion,
		Namespace:   namespace,
		Interpreter: interp,
		Entrypoint:  entrypoint,
		Install: InstallOptions{
			SetupScript: constants.SetupScriptName,
		},
		Uninstall: constants.UninstallScriptName,
		IsLibrary: isLibrary,
	}
}

// FullName returns "namespace/name", or just the name without a namespace
func (m *Manifest) FullName() string {
	if m.Namespace == "" {
		return m.Name
	}
	return m.Namespace + "/" + m.Name
}

// MarshalJSON writes the on-disk shape
func (m Manifest) MarshalJSON() ([]byte, error) {
	out := manifestJSON{
		Name:         m.Name,
		Description:  m.Description,
		Version:      m.Version,
		Interpreter:  m.Interpreter,
		Entrypoint:   m.Entrypoint,
		Install:      m.Install,
		Uninstall:    m.Uninstall,
		IsLibrary:    m.IsLibrary,
		Dependencies: m.Dependencies,
	}
	if m.Namespace != "" {
		ns := m.Namespace
		out.Namespace = &ns
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the on-disk shape. A namespace that is present must be non-empty.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var in manifestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Namespace != nil && *in.Namespace == "" {
		return fmt.Errorf("namespace must not be empty; use null for no namespace")
	}

	*m = Manifest{
		Name:         in.Name,
		Description:  in.Description,
		Version:      in.Version,
		Interpreter:  in.Interpreter,
		Entrypoint:   in.Entrypoint,
		Install:      in.Install,
		Uninstall:    in.Uninstall,
		IsLibrary:    in.IsLibrary,
		Dependencies: in.Dependencies,
	}
	if in.Namespace != nil {
		m.Namespace = *in.Namespace
	}
	return nil
}

// Path resolves a package directory or manifest file to the manifest file path
func Path(path string) string {
	if filepath.Base(path) == constants.ManifestFileName {
		return path
	}
	return filepath.Join(path, constants.ManifestFileName)
}

// IsPackageDir reports whether dir directly contains a manifest
func IsPackageDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, constants.ManifestFileName))
	return err == nil && !info.IsDir()
}

// Parse decodes and validates manifest bytes and derives dependency slots
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, spmerrors.Wrap(err, spmerrors.MalformedManifest, "invalid manifest")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := m.Dependencies.derive(); err != nil {
		return nil, spmerrors.Wrap(err, spmerrors.MalformedManifest, "invalid dependency in manifest")
	}
	return &m, nil
}

// Read loads the manifest at path (a package directory or its package.json) without
// checking the package's files.
func Read(path string) (*Manifest, error) {
	file := Path(path)
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, spmerrors.Wrap(err, spmerrors.MissingManifest, "no %s found at %s", constants.ManifestFileName, filepath.Dir(file)).
				WithRemediation("Run 'spm init' inside the directory to create a package")
		}
		return nil, spmerrors.Wrap(err, spmerrors.MissingManifest, "failed to read %s", file)
	}

	m, err := Parse(data)
	if err != nil {
		var typed *spmerrors.Error
		if errors.As(err, &typed) {
			typed.Message = fmt.Sprintf("%s (%s)", typed.Message, file)
		}
		return nil, err
	}
	return m, nil
}

// Load reads the manifest at path and verifies the package's files are in place
func Load(path string) (*Manifest, error) {
	m, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := m.Verify(filepath.Dir(Path(path))); err != nil {
		return nil, err
	}
	return m, nil
}

// Verify checks that the entrypoint, setup script, uninstall script, src/ and
// dependencies/ exist under dir.
func (m *Manifest) Verify(dir string) error {
	required := []struct {
		path  string
		isDir bool
	}{
		{path: m.Entrypoint},
		{path: m.Install.SetupScript},
		{path: m.Uninstall},
		{path: constants.DependenciesDirName, isDir: true},
		{path: constants.SourceDirName, isDir: true},
	}

	var missing []string
	for _, r := range required {
		info, err := os.Stat(filepath.Join(dir, r.path))
		if err != nil || info.IsDir() != r.isDir {
			missing = append(missing, r.path)
		}
	}

	if len(missing) > 0 {
		return spmerrors.New(spmerrors.BrokenPackage, "package %s at %s is missing: %s", m.FullName(), dir, strings.Join(missing, ", ")).
			WithRemediation("Restore the missing files or reinstall the package")
	}
	return nil
}

// Save writes the manifest as indented JSON to path (a package directory or its package.json)
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	file := Path(path)
	tmp, err := os.CreateTemp(filepath.Dir(file), ".package-*.json")
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpName, file); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

func (m *Manifest) validate() error {
	malformed := func(format string, args ...interface{}) error {
		return spmerrors.New(spmerrors.MalformedManifest, format, args...)
	}

	if strings.TrimSpace(m.Name) == "" {
		return malformed("manifest name must not be empty")
	}
	if m.Namespace != "" && !isPathSafe(m.Namespace) {
		return malformed("namespace %q is not a valid directory name", m.Namespace)
	}
	if m.Interpreter == "" {
		return malformed("manifest is missing the interpreter")
	}
	if m.Entrypoint == "" {
		return malformed("manifest is missing the entrypoint")
	}
	if m.Install.SetupScript == "" {
		return malformed("manifest is missing install.setup_script")
	}
	if m.Uninstall == "" {
		return malformed("manifest is missing the uninstall script")
	}
	return nil
}

func isPathSafe(segment string) bool {
	if segment == "." || segment == ".." {
		return false
	}
	return !strings.ContainsAny(segment, `/\`)
}
