package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/fvp/internal/filelock"
)

const fileMode = 0o600

// ErrQuotaExceeded is returned by a persister when the encoded list would not fit
// in the configured storage quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Persister loads and saves the encoded task list.
type Persister interface {
	// Load returns the stored bytes, or nil when nothing was stored yet.
	Load() ([]byte, error)
	Save(data []byte) error
}

// FilePersister stores the list in a single JSON file. Reads take a shared lock
// and writes an exclusive lock on a sibling ".lock" file; writes go through a
// temporary file and rename so readers never observe a partial list.
type FilePersister struct {
	Path       string
	QuotaBytes int64 // 0 disables the quota
}

// NewFilePersister returns a persister for path.
func NewFilePersister(path string, quotaBytes int64) *FilePersister {
	return &FilePersister{Path: path, QuotaBytes: quotaBytes}
}

func (p *FilePersister) lockPath() string { return p.Path + ".lock" }

// Load reads the store file.
func (p *FilePersister) Load() ([]byte, error) {
	if _, err := os.Stat(filepath.Dir(p.Path)); err != nil {
		return nil, fmt.Errorf("store directory: %w", err)
	}

	unlock, err := filelock.LockShared(p.lockPath())
	if err != nil {
		return nil, fmt.Errorf("locking store: %w", err)
	}
	defer func() { _ = unlock() }()

	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return data, nil
}

// Save replaces the store file atomically.
func (p *FilePersister) Save(data []byte) error {
	if p.QuotaBytes > 0 && int64(len(data)) > p.QuotaBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(data), p.QuotaBytes)
	}

	unlock, err := filelock.Lock(p.lockPath())
	if err != nil {
		return fmt.Errorf("locking store: %w", err)
	}
	defer func() { _ = unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(p.Path), ".tasks-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Memory is an in-process persister. Err, when set, fails every Save.
type Memory struct {
	Data  []byte
	Err   error
	Saves int
}

// Load returns a copy of the stored bytes.
func (m *Memory) Load() ([]byte, error) {
	if m.Data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.Data...), nil
}

// Save stores a copy of data unless Err is set.
func (m *Memory) Save(data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Data = append([]byte(nil), data...)
	m.Saves++
	return nil
}
