package filestore

const defaultFilePath = "./.vix/outbox.json"

// Config controls a Store's on-disk file.
type Config struct {
	// FilePath is the snapshot file location. Defaults to
	// "./.vix/outbox.json".
	FilePath string
	// PrettyJSON indents the snapshot for human inspection.
	PrettyJSON bool
	// FsyncOnWrite calls File.Sync after every flush.
	FsyncOnWrite bool
}

func (c Config) withDefaults() Config {
	if c.FilePath == "" {
		c.FilePath = defaultFilePath
	}

	return c
}
