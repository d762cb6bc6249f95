// Package follow reads lines appended to a growing log file, the way
// tail -F does, surviving truncation and rotation.
package follow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"nginxlog/internal/driver"
	"nginxlog/internal/model"
	"nginxlog/internal/parser"
)

const defaultPollInterval = time.Second

// Options controls following.
type Options struct {
	// FromStart delivers the existing content before following.
	FromStart bool
	// PollInterval is how often the file is checked when no event arrives.
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Lines calls fn with each complete line appended to path until ctx is done.
// A trailing partial line is held back until its newline arrives. When the
// file is truncated it is read again from the start; when it is renamed or
// removed, the remaining data is drained and the new file at path is read
// from the start once it appears.
//
// Lines returns nil when ctx is done or fn returns driver.ErrStop.
func Lines(ctx context.Context, path string, opts Options, fn func(string) error) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	t := &tracked{path: path, log: log}
	if err := t.open(!opts.FromStart); err != nil {
		return err
	}
	defer t.close()

	err = t.loop(ctx, fsw, interval, fn)
	if errors.Is(err, driver.ErrStop) {
		return nil
	}
	return err
}

// Outcomes follows path and parses each appended line. Line numbers count
// the delivered lines, starting at 1.
func Outcomes(ctx context.Context, path string, p *parser.Parser, opts Options, fn func(model.Outcome) error) error {
	n := 0
	return Lines(ctx, path, opts, func(line string) error {
		n++
		return fn(p.Parse(n, line))
	})
}

type tracked struct {
	path    string
	log     *zap.Logger
	file    *os.File
	info    fs.FileInfo
	offset  int64
	pending []byte
	buf     []byte
}

func (t *tracked) loop(ctx context.Context, fsw *fsnotify.Watcher, interval time.Duration, fn func(string) error) error {
	if err := t.drain(fn); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	target := filepath.Clean(t.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if err := t.drain(fn); err != nil {
					return err
				}
				t.log.Info("log file moved", zap.String("path", t.path), zap.Stringer("op", ev.Op))
				t.close()
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if err := t.sync(fn); err != nil {
					return err
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			t.log.Warn("watcher error", zap.String("path", t.path), zap.Error(err))

		case <-ticker.C:
			if err := t.sync(fn); err != nil {
				return err
			}
		}
	}
}

func (t *tracked) open(atEnd bool) error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	var offset int64
	if atEnd {
		offset, err = f.Seek(0, io.SeekEnd)
		if err != nil {
			f.Close() //nolint:errcheck
			return fmt.Errorf("seek %s: %w", t.path, err)
		}
	}

	t.file = f
	t.info = info
	t.offset = offset
	t.pending = t.pending[:0]
	return nil
}

func (t *tracked) close() {
	if t.file == nil {
		return
	}
	t.file.Close() //nolint:errcheck
	t.file = nil
	t.info = nil
}

// sync reopens a replaced file, rewinds a truncated one and reads whatever
// was appended.
func (t *tracked) sync(fn func(string) error) error {
	info, err := os.Stat(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t.drain(fn)
		}
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	if t.file != nil && !os.SameFile(info, t.info) {
		if err := t.drain(fn); err != nil {
			return err
		}
		t.close()
	}

	switch {
	case t.file == nil:
		if err := t.open(false); err != nil {
			return err
		}
		t.log.Info("reopened log file", zap.String("path", t.path))
	case info.Size() < t.offset:
		t.log.Info("log file truncated", zap.String("path", t.path), zap.Int64("size", info.Size()), zap.Int64("offset", t.offset))
		if _, err := t.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek %s: %w", t.path, err)
		}
		t.offset = 0
		t.pending = t.pending[:0]
	}
	return t.drain(fn)
}

// drain reads to the current end of the file and emits complete lines.
func (t *tracked) drain(fn func(string) error) error {
	if t.file == nil {
		return nil
	}
	if t.buf == nil {
		t.buf = make([]byte, 64*1024)
	}
	for {
		n, err := t.file.Read(t.buf)
		if n > 0 {
			t.offset += int64(n)
			t.pending = append(t.pending, t.buf[:n]...)
			if err := t.emit(fn); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
	}
}

func (t *tracked) emit(fn func(string) error) error {
	rest := t.pending
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		line := rest[:i]
		rest = rest[i+1:]
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if err := fn(string(line)); err != nil {
			t.pending = append(t.pending[:0], rest...)
			return err
		}
	}
	t.pending = append(t.pending[:0], rest...)

	if len(t.pending) > driver.MaxLineSize {
		return fmt.Errorf("read %s: line exceeds %d bytes", t.path, driver.MaxLineSize)
	}
	return nil
}
