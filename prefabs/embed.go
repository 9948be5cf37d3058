package prefabs

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
)

//go:embed *.yaml scripts/*.tengo
var embedded embed.FS

var (
	overrideMu  sync.RWMutex
	overrideDir string
)

// SetOverrideDir points loads at an on-disk directory instead of the embedded
// copies, used together with the watcher for hot reload in debug builds.
func SetOverrideDir(dir string) {
	overrideMu.Lock()
	overrideDir = dir
	overrideMu.Unlock()
}

// Load returns the raw bytes of an embedded file, preferring the override
// directory when one is set.
func Load(filename string) ([]byte, error) {
	overrideMu.RLock()
	dir := overrideDir
	overrideMu.RUnlock()

	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err == nil {
			return data, nil
		}
	}

	data, err := embedded.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: read %s: %w", filename, err)
	}
	return data, nil
}

// Script returns the source of an embedded tengo script by base name.
func Script(name string) ([]byte, error) {
	return Load(path.Join("scripts", name+".tengo"))
}
