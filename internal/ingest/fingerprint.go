package ingest

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/spaolacci/murmur3"

	"github.com/staats/staats/pkg/types"
)

// Fingerprint computes a stable 128-bit hash of a dataset's contents,
// traversed column by column in column order. Two datasets with the same
// columns, rows and cell values produce the same fingerprint, which lets
// a run archive record exactly which data it was produced from.
func Fingerprint(data *types.Dataset) string {
	h := murmur3.New128()

	var rowBuf [8]byte
	binary.LittleEndian.PutUint64(rowBuf[:], uint64(data.Len()))
	h.Write(rowBuf[:])

	for _, name := range data.ColumnNames() {
		h.Write([]byte(name))
		h.Write([]byte{0})

		col, _ := data.Column(name)
		for _, cell := range col {
			switch {
			case cell.IsNull():
				h.Write([]byte{0})
			default:
				if text, ok := cell.Text(); ok {
					h.Write([]byte{2})
					h.Write([]byte(text))
				} else if n, ok := cell.Number(); ok {
					h.Write([]byte{1})
					h.Write([]byte(strconv.FormatFloat(n, 'g', -1, 64)))
				}
			}
		}
	}

	h1, h2 := h.Sum128()
	return fmt.Sprintf("%016x%016x", h1, h2)
}
