package shim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const shimMapFileName = ".shim-map.json"

// ShimMap records which package owns each shim.
// The key is the shim name (e.g. "deploy"), the value the package full name (e.g. "acme/deploy").
type ShimMap map[string]string

func (m *Manager) shimMapPath() string {
	return filepath.Join(m.binDir, shimMapFileName)
}

// LoadShimMap reads the ownership map; a missing file is an empty map
func (m *Manager) LoadShimMap() (ShimMap, error) {
	data, err := os.ReadFile(m.shimMapPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ShimMap{}, nil
		}
		return nil, err
	}

	shimMap := ShimMap{}
	if err := json.Unmarshal(data, &shimMap); err != nil {
		return nil, fmt.Errorf("corrupt shim map %s: %w", m.shimMapPath(), err)
	}
	return shimMap, nil
}

// SaveShimMap writes the ownership map
func (m *Manager) SaveShimMap(shimMap ShimMap) error {
	if err := os.MkdirAll(m.binDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(shimMap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.shimMapPath(), data, 0644)
}

// Owner returns the package owning the shim
func (m *Manager) Owner(name string) (string, bool) {
	shimMap, err := m.LoadShimMap()
	if err != nil {
		return "", false
	}
	owner, ok := shimMap[name]
	return owner, ok
}
