package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/internal/tab"
	"github.com/staats/staats/pkg/types"
)

// WriteCSV streams the rendered results to w, one table after another
// with a blank line between them.
func WriteCSV(w io.Writer, results []*tab.Result, mode types.DisplayMode) error {
	cw := csv.NewWriter(w)
	for i, res := range results {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		for _, row := range RenderGrid(res, mode) {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile renders the results into a CSV file.
func WriteCSVFile(path string, results []*tab.Result, mode types.DisplayMode) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCategoryStorage, errors.CodeSaveFailed, err, "creating %s", path)
	}
	defer f.Close()

	if err := WriteCSV(f, results, mode); err != nil {
		return errors.Wrapf(errors.ErrCategoryStorage, errors.CodeSaveFailed, err, "writing %s", path)
	}
	return nil
}
