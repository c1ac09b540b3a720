package wal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriterConfig controls Writer behavior.
type WriterConfig struct {
	FilePath string
	// FsyncOnWrite calls File.Sync after every append. Slower, safer
	// against power loss; off by default to match the outbox's own
	// store default.
	FsyncOnWrite bool
}

// Writer appends records to a single log file, creating parent
// directories on first open.
type Writer struct {
	cfg  WriterConfig
	file *os.File
}

// NewWriter opens (creating if absent) the log file at cfg.FilePath
// for append.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	w := &Writer{cfg: cfg}
	if err := w.open(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Writer) open() error {
	dir := filepath.Dir(w.cfg.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %v", ErrWalIO, err)
		}
	}

	f, err := os.OpenFile(w.cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrWalIO, err)
	}
	w.file = f

	return nil
}

// Append writes rec as a single frame and returns the byte offset at
// which its header begins. The frame (and, when FsyncOnWrite is set,
// the underlying file) is flushed before Append returns.
func (w *Writer) Append(rec Record) (int64, error) {
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	offset, err := w.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: tell: %v", ErrWalIO, err)
	}

	if _, err := w.file.Write(marshal(rec)); err != nil {
		return 0, fmt.Errorf("%w: write: %v", ErrWalIO, err)
	}

	if err := w.flush(); err != nil {
		return 0, err
	}

	return offset, nil
}

func (w *Writer) flush() error {
	if w.cfg.FsyncOnWrite {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("%w: fsync: %v", ErrWalIO, err)
		}
	}

	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}

	return w.file.Close()
}
