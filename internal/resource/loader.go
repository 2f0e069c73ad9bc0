package resource

import (
	"compress/gzip"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"robotoff/internal/matcher"
)

//go:embed data
var embeddedData embed.FS

var (
	dataDirMu sync.RWMutex
	dataDir   string
)

// SetDataDir points the loaders at a directory overriding the embedded
// defaults. Files missing from the directory still resolve to the embedded
// copy. Call before the first extraction; it does not invalidate stores
// already loaded.
func SetDataDir(dir string) {
	dataDirMu.Lock()
	defer dataDirMu.Unlock()
	dataDir = dir
}

// Open returns a reader for the named data file, preferring the configured
// data directory over the embedded defaults.
func Open(name string) (io.ReadCloser, error) {
	dataDirMu.RLock()
	dir := dataDir
	dataDirMu.RUnlock()

	if dir != "" {
		f, err := os.Open(filepath.Join(dir, name))
		if err == nil {
			return f, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("resource: opening %s: %w", name, err)
		}
	}

	f, err := embeddedData.Open("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("resource: no data file %s: %w", name, err)
	}
	return f, nil
}

// LoadDictionary parses a pipe-delimited `key||display_name[||regex]` file.
func LoadDictionary(name string, keep func(matcher.Keyword) bool) ([]matcher.Keyword, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	keywords, err := matcher.ParseDictionary(f, keep)
	if err != nil {
		return nil, fmt.Errorf("resource: %s: %w", name, err)
	}
	return keywords, nil
}

// LoadJSON decodes a JSON data file into v.
func LoadJSON(name string, v any) error {
	f, err := Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("resource: decoding %s: %w", name, err)
	}
	return nil
}

// LoadGzippedJSON decodes a gzip-compressed JSON data file into v.
func LoadGzippedJSON(name string, v any) error {
	f, err := Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("resource: decompressing %s: %w", name, err)
	}
	defer gz.Close()

	if err := json.NewDecoder(gz).Decode(v); err != nil {
		return fmt.Errorf("resource: decoding %s: %w", name, err)
	}
	return nil
}
