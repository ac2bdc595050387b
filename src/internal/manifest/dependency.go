package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

// Dependency is a direct reference to a library package. Name and Namespace are
// derived from URL and never persisted.
type Dependency struct {
	URL       string `json:"url"`
	Version   string `json:"version"`
	Name      string `json:"-"`
	Namespace string `json:"-"`
}

// NewDependency builds a dependency and derives its slot from url
func NewDependency(url, version string) (Dependency, error) {
	name, namespace, err := Derive(url)
	if err != nil {
		return Dependency{}, err
	}
	return Dependency{URL: url, Version: version, Name: name, Namespace: namespace}, nil
}

// FullName returns "namespace/name"
func (d Dependency) FullName() string {
	return d.Namespace + "/" + d.Name
}

// SlotDir returns where the dependency lives inside packageRoot
func (d Dependency) SlotDir(packageRoot string) string {
	return filepath.Join(packageRoot, constants.DependenciesDirName, d.Namespace, d.Name)
}

// IsLocal reports whether the URL names an existing filesystem path
func (d Dependency) IsLocal() bool {
	_, err := os.Stat(d.URL)
	return err == nil
}

// Derive computes (name, namespace) from a dependency URL. An existing local path
// maps to its base name in the "local" namespace; anything else needs at least two
// '/'-separated segments: ".../<namespace>/<name>[.git]".
func Derive(url string) (name, namespace string, err error) {
	if url == "" {
		return "", "", spmerrors.New(spmerrors.InvalidDependencyURL, "dependency url must not be empty")
	}

	if _, statErr := os.Stat(url); statErr == nil {
		base := filepath.Base(filepath.Clean(url))
		if base == "." || base == string(filepath.Separator) {
			return "", "", spmerrors.New(spmerrors.InvalidDependencyURL, "cannot derive a package name from %q", url)
		}
		return base, constants.LocalNamespace, nil
	}

	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", "", spmerrors.New(spmerrors.InvalidDependencyURL, "invalid dependency url %q: expected <namespace>/<name>", url).
			WithRemediation("Use a git URL such as https://github.com/user/repo or an existing local path")
	}

	name = strings.TrimSuffix(parts[len(parts)-1], ".git")
	namespace = parts[len(parts)-2]
	if i := strings.LastIndex(namespace, ":"); i >= 0 {
		// scp-like git@host:namespace/name
		namespace = namespace[i+1:]
	}
	if !isPathSafe(name) || !isPathSafe(namespace) || name == "" || namespace == "" {
		return "", "", spmerrors.New(spmerrors.InvalidDependencyURL, "invalid dependency url %q: cannot derive namespace and name", url)
	}
	return name, namespace, nil
}

// Dependencies is an ordered collection holding at most one dependency per slot
type Dependencies struct {
	items []Dependency
}

// Add inserts dep. An identical (url, version) is a no-op; a different dependency in
// the same slot is replaced in place.
func (d *Dependencies) Add(dep Dependency) {
	for i, existing := range d.items {
		if existing.URL == dep.URL && existing.Version == dep.Version {
			return
		}
		if existing.Name == dep.Name && existing.Namespace == dep.Namespace {
			d.items[i] = dep
			return
		}
	}
	d.items = append(d.items, dep)
}

// Remove deletes the dependency in the given slot
func (d *Dependencies) Remove(name, namespace string) (Dependency, bool) {
	i, ok := d.Find(name, namespace)
	if !ok {
		return Dependency{}, false
	}
	removed := d.items[i]
	d.items = append(d.items[:i:i], d.items[i+1:]...)
	if len(d.items) == 0 {
		d.items = nil
	}
	return removed, true
}

// Find returns the index of the dependency in the given slot
func (d *Dependencies) Find(name, namespace string) (int, bool) {
	for i, dep := range d.items {
		if dep.Name == name && dep.Namespace == namespace {
			return i, true
		}
	}
	return -1, false
}

// FindByURL returns the first dependency with the given url
func (d *Dependencies) FindByURL(url string) (Dependency, bool) {
	for _, dep := range d.items {
		if dep.URL == url {
			return dep, true
		}
	}
	return Dependency{}, false
}

// Get returns a pointer to the i-th dependency
func (d *Dependencies) Get(i int) *Dependency {
	return &d.items[i]
}

// All returns a copy of the dependencies in insertion order
func (d *Dependencies) All() []Dependency {
	out := make([]Dependency, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of dependencies
func (d *Dependencies) Len() int {
	return len(d.items)
}

// MarshalJSON writes the dependencies as an array of {url, version}
func (d Dependencies) MarshalJSON() ([]byte, error) {
	if d.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.items)
}

// UnmarshalJSON reads an array of {url, version}; slots are derived separately
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	var items []Dependency
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	d.items = nil
	if len(items) > 0 {
		d.items = items
	}
	return nil
}

// derive recomputes every slot from its url
func (d *Dependencies) derive() error {
	for i := range d.items {
		name, namespace, err := Derive(d.items[i].URL)
		if err != nil {
			return err
		}
		d.items[i].Name = name
		d.items[i].Namespace = namespace
	}
	return nil
}
