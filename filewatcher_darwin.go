//go:build darwin
// +build darwin

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"golang.org/x/sys/unix"
)

var watchLog = commonlog.GetLogger("bas8.watch")

// SourceWatcher monitors one BASIC source file through kqueue and fires the
// recompile callback once edits settle. A vnode watch follows the open file,
// not the name, so the source is reopened after save-by-rename.
type SourceWatcher struct {
	kq       int
	fd       int
	path     string
	mu       sync.Mutex
	debounce *time.Timer
	onChange func(string)
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
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %v", err)
	}
	sw := &SourceWatcher{kq: kq, fd: -1, path: abs, onChange: onChange}
	if err := sw.arm(); err != nil {
		unix.Close(kq)
		return nil, err
	}
	return sw, nil
}

func (sw *SourceWatcher) arm() error {
	if sw.fd >= 0 {
		unix.Close(sw.fd)
	}
	fd, err := unix.Open(sw.path, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot watch source %s: %v", sw.path, err)
	}
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_DELETE | unix.NOTE_RENAME,
	}
	if _, err := unix.Kevent(sw.kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		unix.Close(fd)
		return fmt.Errorf("cannot watch source %s: %v", sw.path, err)
	}
	sw.fd = fd
	return nil
}

// Watch blocks, reading vnode events for the source file.
func (sw *SourceWatcher) Watch() {
	events := make([]unix.Kevent_t, 4)
	for {
		n, err := unix.Kevent(sw.kq, nil, events, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EBADF {
				// Close was called
				return
			}
			watchLog.Errorf("kevent: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		changed := false
		for i := 0; i < n; i++ {
			if events[i].Fflags&(unix.NOTE_DELETE|unix.NOTE_RENAME) != 0 {
				// wait for the editor to finish the rename before reopening
				for tries := 0; tries < 20; tries++ {
					if err := sw.arm(); err == nil {
						changed = true
						break
					}
					time.Sleep(50 * time.Millisecond)
				}
				continue
			}
			if events[i].Fflags&unix.NOTE_WRITE != 0 {
				changed = true
			}
		}
		if changed {
			sw.kick()
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
	if sw.fd >= 0 {
		unix.Close(sw.fd)
	}
	return unix.Close(sw.kq)
}
