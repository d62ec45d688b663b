package export

import (
	"encoding/json"
	"os"
	"time"

	"github.com/golang/snappy"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/tab"
)

// Archive is the self-contained record of one pipeline run: which data it
// ran on and every table it produced. Archives are stored as
// snappy-compressed JSON.
type Archive struct {
	RunID       string        `json:"run_id"`
	CreatedAt   time.Time     `json:"created_at"`
	Fingerprint string        `json:"fingerprint"`
	Plan        string        `json:"plan"`
	Results     []*tab.Result `json:"results"`
}

// WriteArchive stores an archive at path.
func WriteArchive(path string, a *Archive) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return errors.Wrapf(errors.ErrCategoryStorage, errors.CodeSaveFailed, err, "encoding archive")
	}
	if err := os.WriteFile(path, snappy.Encode(nil, raw), 0644); err != nil {
		return errors.Wrapf(errors.ErrCategoryStorage, errors.CodeSaveFailed, err, "writing %s", path)
	}
	return nil
}

// ReadArchive loads an archive from path.
func ReadArchive(path string) (*Archive, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryStorage, errors.CodeLoadFailed, err, "reading %s", path)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryStorage, errors.CodeLoadFailed, err, "decompressing %s", path)
	}
	var a Archive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryStorage, errors.CodeLoadFailed, err, "decoding %s", path)
	}
	return &a, nil
}
