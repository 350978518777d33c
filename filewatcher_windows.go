//go:build windows
// +build windows

package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

var watchLog = commonlog.GetLogger("bas8.watch")

// SourceWatcher polls the modification time of one BASIC source file and
// fires the recompile callback once edits settle.
type SourceWatcher struct {
	path     string
	lastMod  time.Time
	mu       sync.Mutex
	debounce *time.Timer
	onChange func(string)
	stop     chan struct{}
}

// NewSourceWatcher watches the BASIC source at path.
func NewSourceWatcher(path string, onChange func(string)) (*SourceWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(abs)); ext != ".bas" {
		watchLog.Noticef("watching %s, which has no .bas extension", abs)
	}
	sw := &SourceWatcher{path: abs, onChange: onChange, stop: make(chan struct{})}
	if info, err := os.Stat(abs); err == nil {
		sw.lastMod = info.ModTime()
	}
	return sw, nil
}

// Watch blocks, polling the source file twice a second.
func (sw *SourceWatcher) Watch() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			info, err := os.Stat(sw.path)
			if err != nil {
				// the editor may be mid-rename; keep polling
				continue
			}
			if info.ModTime().After(sw.lastMod) {
				sw.lastMod = info.ModTime()
				sw.kick()
			}
		case <-sw.stop:
			return
		}
	}
}

// kick restarts the settle timer; the recompile fires when saves stop
// arriving for 300ms.
func (sw *SourceWatcher) kick() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.debounce != nil {
		sw.debounce.Stop()
	}
	sw.debounce = time.AfterFunc(300*time.Millisecond, func() {
		sw.onChange(sw.path)
	})
}

func (sw *SourceWatcher) Close() error {
	close(sw.stop)
	return nil
}
