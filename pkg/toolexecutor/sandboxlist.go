package toolexecutor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/danang/perkakas/pkg/permission"
)

// sandboxListFile is the on-disk shape of a sandbox list.
type sandboxListFile struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

// SandboxList is a file-backed sandbox allow/deny list that can reload
// itself when the file changes. Entries may use glob patterns; the denylist
// always wins.
type SandboxList struct {
	mu       sync.RWMutex
	filePath string
	allow    []string
	deny     []string

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewSandboxList loads a sandbox list from a JSON file. A missing file
// yields an empty list (allow everything not denied).
func NewSandboxList(filePath string) (*SandboxList, error) {
	sl := &SandboxList{
		filePath: filePath,
		stopCh:   make(chan struct{}),
	}

	if err := sl.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load sandbox list: %w", err)
		}
		log.Info().Str("path", filePath).Msg("Sandbox list file does not exist, allowing all tools not denied")
	}

	return sl, nil
}

// Load reads the list from disk.
func (sl *SandboxList) Load() error {
	data, err := os.ReadFile(sl.filePath)
	if err != nil {
		return err
	}

	var file sandboxListFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse sandbox list: %w", err)
	}

	sl.mu.Lock()
	sl.allow = file.Allow
	sl.deny = file.Deny
	sl.mu.Unlock()

	log.Info().
		Str("path", sl.filePath).
		Int("allow", len(file.Allow)).
		Int("deny", len(file.Deny)).
		Msg("Sandbox list loaded")

	return nil
}

// Watch reloads the list whenever the backing file is rewritten.
func (sl *SandboxList) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(sl.filePath)); err != nil {
		_ = watcher.Close()
		return err
	}
	sl.watcher = watcher

	go sl.run()
	return nil
}

func (sl *SandboxList) run() {
	for {
		select {
		case event, ok := <-sl.watcher.Events:
			if !ok {
				return
			}
			if event.Name != sl.filePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := sl.Load(); err != nil {
				log.Warn().Err(err).Str("path", sl.filePath).Msg("Sandbox list reload failed")
			}
		case err, ok := <-sl.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Sandbox list watcher error")
		case <-sl.stopCh:
			return
		}
	}
}

// Close stops the watcher.
func (sl *SandboxList) Close() error {
	close(sl.stopCh)
	if sl.watcher != nil {
		return sl.watcher.Close()
	}
	return nil
}

// Allowed decides whether a tool may run under sandbox mode.
func (sl *SandboxList) Allowed(toolName string) bool {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return permission.IsSandboxAllowed(toolName, sl.allow, sl.deny)
}

// Lists returns copies of the current allow and deny lists.
func (sl *SandboxList) Lists() (allow, deny []string) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return append([]string(nil), sl.allow...), append([]string(nil), sl.deny...)
}
