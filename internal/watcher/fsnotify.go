package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fsnotifySource delivers events from the platform's native
// notification mechanism (inotify on Linux). fsnotify does not watch
// recursively by itself, so the source registers every directory in
// the tree at start and adds new directories as they appear.
type fsnotifySource struct {
	fw        *fsnotify.Watcher
	events    chan Event
	errs      chan error
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	recursive bool

	mu   sync.Mutex
	dirs map[string]struct{}
}

// NewFSNotifySource returns the production notification backend.
func NewFSNotifySource() Source {
	return &fsnotifySource{}
}

func (s *fsnotifySource) Start(path string, recursive bool) (<-chan Event, <-chan error, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	s.fw = fw
	s.recursive = recursive
	s.events = make(chan Event, 64)
	s.errs = make(chan error, 1)
	s.done = make(chan struct{})
	s.dirs = make(map[string]struct{})

	if err := s.addTree(path); err != nil {
		fw.Close()
		return nil, nil, err
	}

	s.wg.Add(1)
	go s.run()

	return s.events, s.errs, nil
}

func (s *fsnotifySource) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.fw != nil {
			err = s.fw.Close()
		}
		s.wg.Wait()
	})
	return err
}

// addTree registers path and, in recursive mode, every directory below
// it.
func (s *fsnotifySource) addTree(root string) error {
	if !s.recursive {
		if err := s.fw.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		s.rememberDir(root)
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Entries can vanish mid-walk; the root itself failing is
			// still a setup error.
			if path == root {
				return fmt.Errorf("walk %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := s.fw.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		s.rememberDir(path)
		return nil
	})
}

func (s *fsnotifySource) run() {
	defer s.wg.Done()
	defer close(s.events)
	defer close(s.errs)

	for {
		select {
		case raw, ok := <-s.fw.Events:
			if !ok {
				return
			}
			ev, ok := s.translate(raw)
			if !ok {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			select {
			case s.errs <- err:
			case <-s.done:
				return
			default:
				// Receiver is behind; drop rather than stall delivery.
			}
		case <-s.done:
			return
		}
	}
}

// translate converts an fsnotify event, classifies directories, and
// maintains the recursive watch set.
func (s *fsnotifySource) translate(raw fsnotify.Event) (Event, bool) {
	op, ok := opString(raw.Op)
	if !ok {
		return Event{}, false
	}

	isDir := s.knownDir(raw.Name)
	if info, err := os.Stat(raw.Name); err == nil {
		isDir = info.IsDir()
	}

	switch {
	case raw.Op.Has(fsnotify.Create) && isDir:
		if s.recursive {
			// New subdirectory: extend the watch. Files already inside
			// it (racy creation) are picked up by the walk.
			if err := s.addTree(raw.Name); err != nil {
				select {
				case s.errs <- err:
				default:
				}
			}
		}
	case raw.Op.Has(fsnotify.Remove) || raw.Op.Has(fsnotify.Rename):
		if isDir {
			s.forgetDir(raw.Name)
		}
	}

	return Event{
		Path:  raw.Name,
		Op:    op,
		Time:  time.Now(),
		IsDir: isDir,
	}, true
}

func (s *fsnotifySource) rememberDir(path string) {
	s.mu.Lock()
	s.dirs[path] = struct{}{}
	s.mu.Unlock()
}

func (s *fsnotifySource) forgetDir(path string) {
	s.mu.Lock()
	delete(s.dirs, path)
	s.mu.Unlock()
}

func (s *fsnotifySource) knownDir(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dirs[path]
	return ok
}

// opString maps fsnotify ops onto the journal vocabulary. Chmod-only
// events are dropped: permission churn is not activity.
func opString(op fsnotify.Op) (string, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return "CREATE", true
	case op.Has(fsnotify.Write):
		return "WRITE", true
	case op.Has(fsnotify.Remove):
		return "REMOVE", true
	case op.Has(fsnotify.Rename):
		return "RENAME", true
	default:
		return "", false
	}
}
