// Package scaffold lays out a new package: manifest, entrypoint, setup and uninstall
// scripts, the std include helper, and the src/ and dependencies/ directories.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/ui"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type templateData struct {
	Name    string
	Shebang string
}

// Create writes the package skeleton for m into dir, which must already exist.
// Existing files are never overwritten.
func Create(dir string, m *manifest.Manifest) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("a package must be created inside an existing directory: %s", dir)
	}

	data := templateData{
		Name:    m.Name,
		Shebang: m.Interpreter.Shebang(),
	}

	entrypointTemplate := "main.sh.tmpl"
	if m.IsLibrary {
		entrypointTemplate = "lib.sh.tmpl"
	}

	if err := os.Mkdir(filepath.Join(dir, constants.SourceDirName), 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create %s: %w", constants.SourceDirName, err)
	}

	scripts := []struct {
		template string
		path     string
	}{
		{template: entrypointTemplate, path: m.Entrypoint},
		{template: "install.sh.tmpl", path: m.Install.SetupScript},
		{template: "uninstall.sh.tmpl", path: m.Uninstall},
		{template: "include.sh.tmpl", path: filepath.Join(constants.SourceDirName, constants.StdDirName, constants.IncludeFileName)},
	}

	// Manifest is written before the scripts so a clash on package.json fails first
	if err := writeManifest(dir, m); err != nil {
		return err
	}

	for _, s := range scripts {
		if err := renderScript(dir, s.template, s.path, m.Interpreter, data); err != nil {
			return err
		}
	}

	if err := os.Mkdir(filepath.Join(dir, constants.DependenciesDirName), 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create %s: %w", constants.DependenciesDirName, err)
	}

	ui.Logger().Debug("created package skeleton", "package", m.FullName(), "dir", dir)
	return nil
}

func writeManifest(dir string, m *manifest.Manifest) error {
	path := filepath.Join(dir, constants.ManifestFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("a %s file already exists in %s; remove or rename it first", constants.ManifestFileName, dir)
	}
	return m.Save(dir)
}

func renderScript(dir, name, rel string, interp shell.Interpreter, data templateData) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", rel, err)
	}

	if interp != shell.Cmd {
		if err := shell.CheckSource(rel, buf.String(), interp); err != nil {
			return fmt.Errorf("generated %s is invalid: %w", rel, err)
		}
	}

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(rel), err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0755)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("a %s file already exists in %s; remove or rename it first", rel, dir)
		}
		return fmt.Errorf("failed to create %s: %w", rel, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// umask may have stripped the execute bits
	return os.Chmod(path, 0755)
}
