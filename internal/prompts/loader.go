// Package prompts renders the system prompts sent to the completion client.
// Static prompt text lives in JSON files embedded at compile time; the
// dynamic parts are assembled by section builders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library caches parsed prompt files keyed by filename
type library struct {
	fsys  fs.FS
	mu    sync.RWMutex
	files map[string]map[string]string
}

var defaultLibrary = newLibrary(promptFiles)

func newLibrary(fsys fs.FS) *library {
	return &library{fsys: fsys, files: make(map[string]map[string]string)}
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "assistant.json").
func Get(filename, key string) (string, error) {
	return defaultLibrary.get(filename, key)
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// The embedded files are fixed at build time, so a miss is a programming error.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces placeholders of the form {{.Key}} with values from data.
// Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	defaultLibrary.mu.Lock()
	defaultLibrary.files = make(map[string]map[string]string)
	defaultLibrary.mu.Unlock()
}

func (l *library) get(filename, key string) (string, error) {
	prompts, err := l.load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

func (l *library) load(filename string) (map[string]string, error) {
	l.mu.RLock()
	prompts, ok := l.files[filename]
	l.mu.RUnlock()
	if ok {
		return prompts, nil
	}

	data, err := fs.ReadFile(l.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.files[filename] = prompts
	l.mu.Unlock()
	return prompts, nil
}
