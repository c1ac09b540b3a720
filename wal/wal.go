package wal

const defaultFilePath = "./.vix/wal.log"

// Config controls a Wal's file path and fsync behavior.
type Config struct {
	FilePath     string
	FsyncOnWrite bool
}

func (c Config) withDefaults() Config {
	if c.FilePath == "" {
		c.FilePath = defaultFilePath
	}

	return c
}

// Wal is a convenience wrapper opening a fresh Writer per Append and a
// fresh Reader per Replay, mirroring the reference implementation's
// stateless-handle-per-call shape. Callers appending in a tight loop
// should use Writer directly to avoid repeated file opens.
type Wal struct {
	cfg Config
}

// New constructs a Wal over cfg.
func New(cfg Config) *Wal {
	return &Wal{cfg: cfg.withDefaults()}
}

// Append opens the log file, writes one record, and returns the byte
// offset at which its header begins.
func (w *Wal) Append(rec Record) (int64, error) {
	writer, err := NewWriter(WriterConfig{FilePath: w.cfg.FilePath, FsyncOnWrite: w.cfg.FsyncOnWrite})
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	return writer.Append(rec)
}

// Replay reads every record from fromOffset to end-of-log, invoking
// onRecord for each, and returns CurrentOffset after the last record
// read (or -1 if none were read).
func (w *Wal) Replay(fromOffset int64, onRecord func(Record)) (int64, error) {
	reader, err := NewReader(w.cfg.FilePath)
	if err != nil {
		return -1, err
	}
	defer reader.Close()

	if err := reader.Seek(fromOffset); err != nil {
		return -1, err
	}

	last := int64(-1)
	for {
		rec, ok, err := reader.Next()
		if err != nil {
			return last, err
		}
		if !ok {
			break
		}
		onRecord(rec)
		last = reader.CurrentOffset()
	}

	return last, nil
}
