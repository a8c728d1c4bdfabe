package sheet

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Decoder turns raw file bytes into a grid.
type Decoder func(data []byte) (Grid, error)

var (
	registry   = make(map[string]Decoder)
	registryMu sync.RWMutex
)

func init() {
	Register(".csv", decodeCSV)
	Register(".txt", decodeCSV)
	Register(".xlsx", decodeXLSX)
	Register(".xlsm", decodeXLSX)
}

// Register adds a decoder for ext (".csv", ".xlsx", ...).
// Panics if a decoder is already registered for the extension.
func Register(ext string, dec Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()

	ext = strings.ToLower(ext)
	if _, exists := registry[ext]; exists {
		panic(fmt.Sprintf("sheet decoder already registered: %s", ext))
	}
	registry[ext] = dec
}

// Lookup returns the decoder registered for ext.
func Lookup(ext string) (Decoder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	dec, ok := registry[strings.ToLower(ext)]
	return dec, ok
}

// Extensions returns every registered extension, sorted.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
