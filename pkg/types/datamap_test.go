package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataMapOrder(t *testing.T) {
	m := NewDataMap()
	m.Add(&Question{Name: "S9", Kind: SingleChoice})
	m.Add(&Question{Name: "Q23A", Kind: MultiChoice})
	m.Add(&Question{Name: "Age", Kind: Numeric})

	assert.Equal(t, []string{"S9", "Q23A", "Age"}, m.Names())

	// Replacing keeps the original position.
	m.Add(&Question{Name: "S9", Kind: SingleChoice, Title: "updated"})
	assert.Equal(t, []string{"S9", "Q23A", "Age"}, m.Names())

	q, ok := m.Lookup("S9")
	require.True(t, ok)
	assert.Equal(t, "updated", q.Title)
}

func TestDataMapJSONRoundTrip(t *testing.T) {
	m := NewDataMap()
	m.Add(&Question{
		Name:  "S9",
		Kind:  SingleChoice,
		Title: "Region",
		Codes: map[int]string{1: "North", 2: "South"},
	})
	m.Add(&Question{Name: "Age", Kind: Numeric, Title: "Age"})
	m.Add(&Question{
		Name:  "Q23A",
		Kind:  MultiChoice,
		Title: "Brands known",
		Codes: map[int]string{1: "Nike", 2: "Adidas"},
	})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back DataMap
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, []string{"S9", "Age", "Q23A"}, back.Names())

	q, ok := back.Lookup("S9")
	require.True(t, ok)
	assert.Equal(t, SingleChoice, q.Kind)
	assert.Equal(t, "Region", q.Title)
	assert.Equal(t, map[int]string{1: "North", 2: "South"}, q.Codes)

	q, ok = back.Lookup("Age")
	require.True(t, ok)
	assert.Equal(t, Numeric, q.Kind)
	assert.Empty(t, q.Codes)
}

func TestDatasetAddColumn(t *testing.T) {
	d := NewDataset(3)
	require.NoError(t, d.AddColumn("A", []Value{NumberValue(1), NumberValue(2), Null()}))

	assert.Error(t, d.AddColumn("A", []Value{Null(), Null(), Null()}), "duplicate column")
	assert.Error(t, d.AddColumn("B", []Value{Null()}), "length mismatch")

	col, ok := d.Column("A")
	require.True(t, ok)
	assert.Len(t, col, 3)
	assert.Equal(t, []string{"A"}, d.ColumnNames())
}

func TestTabDefinitionNullHandling(t *testing.T) {
	def := TabDefinition{NullHandling: "RowNA/ColNA/"}
	assert.True(t, def.HasRowNA())
	assert.True(t, def.HasColNA())
	assert.False(t, def.HasSecondColNA())
}
