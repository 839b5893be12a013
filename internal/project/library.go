package project

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/postcut/internal/machine"
	"github.com/piwi3910/postcut/internal/post"
)

// DefaultMachinesDir returns the default directory for machine files.
func DefaultMachinesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "postcut", "machines"), nil
}

// machineExtensions are tried in this order when looking a machine up.
var machineExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// Library finds machine files by name in a directory. Names without a file
// fall back to the built-in presets.
type Library struct {
	Dir string
}

// NewLibrary creates a library over dir.
func NewLibrary(dir string) *Library {
	return &Library{Dir: dir}
}

// Machine loads the machine called name.
func (l *Library) Machine(name string) (machine.Machine, error) {
	if l.Dir != "" {
		for _, ext := range machineExtensions {
			path := filepath.Join(l.Dir, name+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			return LoadMachine(path)
		}
	}
	if m, ok := machine.ForPreset(name); ok {
		m.Name = name
		return m, nil
	}
	return machine.Machine{}, &post.ResolutionError{Kind: "machine", Name: name}
}

// Names lists the machines available in the directory followed by the
// preset names not shadowed by a file.
func (l *Library) Names() ([]string, error) {
	seen := map[string]bool{}
	var names []string
	if l.Dir != "" {
		entries, err := os.ReadDir(l.Dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			if !isMachineExt(ext) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ext)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	for _, p := range machine.PresetNames() {
		if !seen[p] {
			names = append(names, p)
		}
	}
	return names, nil
}

func isMachineExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range machineExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
