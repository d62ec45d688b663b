// Package ingest loads survey response data into a dataset, matching file
// columns against the project datamap and typing each cell by its
// question kind.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/staats/staats/internal/errors"
	"github.com/staats/staats/pkg/types"
)

// ReadCSV loads a CSV file with a header row. Only columns present in the
// datamap are loaded; empty cells become nulls. Numeric and single-choice
// cells must parse as numbers, multi-choice and open cells are kept as
// text.
func ReadCSV(path string, schema *types.DataMap) (*types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "opening %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Newf(errors.ErrCategoryConfig, errors.CodeLoadFailed, "%s has no header row", path)
	}

	header := records[0]
	body := records[1:]

	data := types.NewDataset(len(body))
	for col, name := range header {
		name = strings.TrimSpace(name)
		q, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		values := make([]types.Value, len(body))
		for row, record := range body {
			var cell string
			if col < len(record) {
				cell = strings.TrimSpace(record[col])
			}
			v, err := parseCell(cell, q.Kind)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err,
					"%s row %d column %q", path, row+2, name)
			}
			values[row] = v
		}
		if err := data.AddColumn(name, values); err != nil {
			return nil, errors.Wrapf(errors.ErrCategoryConfig, errors.CodeLoadFailed, err, "loading %s", path)
		}
	}
	return data, nil
}

// parseCell types one raw cell by the question kind. Empty cells are
// null.
func parseCell(cell string, kind types.QuestionKind) (types.Value, error) {
	if cell == "" {
		return types.Null(), nil
	}
	switch kind {
	case types.Numeric, types.SingleChoice:
		v := types.TextValue(cell)
		if _, ok := v.Number(); !ok {
			return types.Null(), fmt.Errorf("cell %q is not numeric", cell)
		}
		n, _ := v.Number()
		return types.NumberValue(n), nil
	default:
		return types.TextValue(cell), nil
	}
}
