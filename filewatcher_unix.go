// Completion: 100% - Watch mode complete, inotify-driven recompiles
//go:build linux
// +build linux

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/tliron/commonlog"

	"golang.org/x/sys/unix"
)

var watchLog = commonlog.GetLogger("bas8.watch")

// SourceWatcher monitors one BASIC source file and fires the recompile
// callback once edits settle. Editors that save by renaming a fresh file
// over the source drop the inotify watch, so the watch is re-armed whenever
// the watched inode goes away.
type SourceWatcher struct {
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
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %v", err)
	}
	sw := &SourceWatcher{fd: fd, path: abs, onChange: onChange}
	if err := sw.arm(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return sw, nil
}

func (sw *SourceWatcher) arm() error {
	_, err := unix.InotifyAddWatch(sw.fd, sw.path,
		unix.IN_MODIFY|unix.IN_CLOSE_WRITE|unix.IN_MOVE_SELF|unix.IN_DELETE_SELF)
	if err != nil {
		return fmt.Errorf("cannot watch source %s: %v", sw.path, err)
	}
	return nil
}

// Watch blocks, reading inotify events for the source file.
func (sw *SourceWatcher) Watch() {
	buf := make([]byte, (unix.SizeofInotifyEvent+unix.NAME_MAX+1)*16)
	for {
		n, err := unix.Read(sw.fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EBADF {
				// Close was called
				return
			}
			watchLog.Errorf("inotify read: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		changed, rearm := false, false
		for off := 0; off < n; {
			ev := (*unix.InotifyEvent)(unsafe.Pointer(&buf[off]))
			off += unix.SizeofInotifyEvent + int(ev.Len)
			if ev.Mask&(unix.IN_MOVE_SELF|unix.IN_DELETE_SELF|unix.IN_IGNORED) != 0 {
				rearm = true
			}
			if ev.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				changed = true
			}
		}
		if rearm {
			// wait for the editor to finish the rename before re-adding
			for tries := 0; tries < 20; tries++ {
				if err := sw.arm(); err == nil {
					changed = true
					break
				}
				time.Sleep(50 * time.Millisecond)
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
	return unix.Close(sw.fd)
}
