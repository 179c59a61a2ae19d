package persistence

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Gateway = &File{}

// File stores the timestamp in a small JSON document.
type File struct {
	mu       *sync.RWMutex
	filepath string
}

type rawState struct {
	LastFullChargeDate *time.Time `json:"lastFullChargeDate,omitempty"`
}

func NewFile(path string) *File {
	return &File{
		filepath: path,
		mu:       &sync.RWMutex{},
	}
}

func (f *File) LastFullCharge() (time.Time, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, err := f.load()
	if err != nil {
		return time.Time{}, false, err
	}
	if s.LastFullChargeDate == nil {
		return time.Time{}, false, nil
	}
	return *s.LastFullChargeDate, true, nil
}

func (f *File) SetLastFullCharge(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t = t.Round(0)
	s := rawState{LastFullChargeDate: &t}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to create directory for %s: %v", f.filepath, err)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to open file %s: %v", f.filepath, err)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to encode state to file %s: %v", f.filepath, err)
	}

	return nil
}

// Clear removes the stored timestamp.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.filepath)
	if err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to remove %s: %v", f.filepath, err)
	}
	return nil
}

func (f *File) load() (rawState, error) {
	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing saved yet.
			return rawState{}, nil
		}
		return rawState{}, pkgerrors.Wrapf(ErrUnavailable, "failed to open file %s: %v", f.filepath, err)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return rawState{}, pkgerrors.Wrapf(ErrUnavailable, "failed to read file %s: %v", f.filepath, err)
	}

	if strings.TrimSpace(string(b)) == "" {
		return rawState{}, nil
	}

	var s rawState
	if err := json.Unmarshal(b, &s); err != nil {
		return rawState{}, pkgerrors.Wrapf(ErrUnavailable, "failed to unmarshal state from file %s: %v", f.filepath, err)
	}
	return s, nil
}
