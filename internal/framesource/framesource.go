// Package framesource turns a directory of numbered WebP frame files into
// an ordered feed the webm.Muxer can drive AddFrame from, so a caller
// never has to hold a whole video's frames in memory at once — the
// on-disk companion to the muxer's own streaming write path.
//
// Frames are named "frame-%05d.webp"; an optional matching
// "frame-%05d.alpha.webp" supplies that frame's alpha channel. List walks
// a directory once and returns the frames already present, in index
// order. Watch additionally follows the directory with fsnotify and
// delivers frames as they land, for a producer that encodes and drops
// files while this reader drains them.
package framesource

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/fsnotify/fsnotify"
)

// Frame is one numbered frame discovered on disk.
type Frame struct {
	Index int
	Path  string
	Alpha string // "" if no matching alpha file exists
}

var frameNameRE = regexp.MustCompile(`^frame-(\d+)\.webp$`)

func alphaPath(dir string, index int) string {
	p := filepath.Join(dir, fmt.Sprintf("frame-%05d.alpha.webp", index))
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// List returns the frames already present in dir, sorted by index.
func List(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("framesource: read %s: %w", dir, err)
	}

	var frames []Frame
	for _, e := range entries {
		m := frameNameRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		frames = append(frames, Frame{
			Index: index,
			Path:  filepath.Join(dir, e.Name()),
			Alpha: alphaPath(dir, index),
		})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// Watcher delivers frames written to a directory in index order, holding
// back any frame whose index would create a gap until the missing index
// arrives — an encoder writing frame-00002.webp before frame-00001.webp
// finishes must not be delivered out of order.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	frames  chan Frame
	errs    chan error
	closed  chan struct{}
}

// Watch starts watching dir, delivering frames already present followed
// by any written afterward. The caller must call Close when done.
func Watch(dir string) (*Watcher, error) {
	existing, err := List(dir)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("framesource: create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("framesource: watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		watcher: fw,
		frames:  make(chan Frame, 64),
		errs:    make(chan error, 1),
		closed:  make(chan struct{}),
	}

	nextIndex := 0
	if len(existing) > 0 {
		nextIndex = existing[0].Index
	}
	go w.run(existing, nextIndex)
	return w, nil
}

// Frames returns the channel frames are delivered on, closed when the
// watcher is closed.
func (w *Watcher) Frames() <-chan Frame { return w.frames }

// Errors returns the channel watch errors are delivered on.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.closed)
	return w.watcher.Close()
}

func (w *Watcher) run(existing []Frame, nextIndex int) {
	defer close(w.frames)

	pending := make(map[int]Frame)
	for _, f := range existing {
		pending[f.Index] = f
	}
	drain := func() {
		for {
			f, ok := pending[nextIndex]
			if !ok {
				return
			}
			delete(pending, nextIndex)
			select {
			case w.frames <- f:
			case <-w.closed:
				return
			}
			nextIndex++
		}
	}
	drain()

	for {
		select {
		case <-w.closed:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			m := frameNameRE.FindStringSubmatch(filepath.Base(event.Name))
			if m == nil {
				continue
			}
			index, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			pending[index] = Frame{Index: index, Path: event.Name, Alpha: alphaPath(w.dir, index)}
			drain()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
