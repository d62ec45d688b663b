package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/pkg/types"
)

func testSchema() *types.DataMap {
	m := types.NewDataMap()
	m.Add(&types.Question{Name: "S9", Kind: types.SingleChoice, Codes: map[int]string{1: "North", 2: "South"}})
	m.Add(&types.Question{Name: "Q23A", Kind: types.MultiChoice})
	m.Add(&types.Question{Name: "Age", Kind: types.Numeric})
	m.Add(&types.Question{Name: "Comment", Kind: types.OpenText})
	return m
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, `S9,Q23A,Age,Comment,Ignored
1,"1,2",25,fine,x
2,,34,,y
1,3,,"two words",z
`)

	data, err := ReadCSV(path, testSchema())
	require.NoError(t, err)

	assert.Equal(t, 3, data.Len())
	assert.False(t, data.HasColumn("Ignored"), "columns absent from the datamap are skipped")

	col, ok := data.Column("S9")
	require.True(t, ok)
	n, numOK := col[0].Number()
	require.True(t, numOK)
	assert.Equal(t, 1.0, n)

	col, _ = data.Column("Q23A")
	text, textOK := col[0].Text()
	require.True(t, textOK)
	assert.Equal(t, "1,2", text)
	assert.True(t, col[1].IsNull(), "empty cell is null")

	col, _ = data.Column("Age")
	assert.True(t, col[2].IsNull())

	col, _ = data.Column("Comment")
	text, _ = col[2].Text()
	assert.Equal(t, "two words", text)
}

func TestReadCSVRejectsNonNumericCell(t *testing.T) {
	path := writeCSV(t, "Age\nabc\n")
	_, err := ReadCSV(path, testSchema())
	assert.Error(t, err)
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), testSchema())
	assert.Error(t, err)
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE responses (S9 INTEGER, Q23A TEXT, Age REAL, Extra TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO responses VALUES (1, '1,2', 25.0, 'x'), (2, NULL, NULL, 'y')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	data, err := ReadSQLite(context.Background(), path, "responses", testSchema())
	require.NoError(t, err)

	assert.Equal(t, 2, data.Len())
	assert.False(t, data.HasColumn("Extra"))

	col, ok := data.Column("Age")
	require.True(t, ok)
	n, numOK := col[0].Number()
	require.True(t, numOK)
	assert.Equal(t, 25.0, n)
	assert.True(t, col[1].IsNull())

	col, _ = data.Column("Q23A")
	text, _ := col[0].Text()
	assert.Equal(t, "1,2", text)
}

func TestFingerprintStability(t *testing.T) {
	build := func(age float64) *types.Dataset {
		d := types.NewDataset(2)
		require.NoError(t, d.AddColumn("Age", []types.Value{
			types.NumberValue(age), types.Null(),
		}))
		require.NoError(t, d.AddColumn("Q23A", []types.Value{
			types.TextValue("1,2"), types.TextValue("3"),
		}))
		return d
	}

	a := Fingerprint(build(25))
	b := Fingerprint(build(25))
	c := Fingerprint(build(26))

	assert.Equal(t, a, b, "same content, same fingerprint")
	assert.NotEqual(t, a, c, "changed cell changes the fingerprint")
	assert.Len(t, a, 32)
}
