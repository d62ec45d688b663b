package class

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/pkg/types"
)

func ageClass() types.Class {
	return types.Class{
		Name: "AgeBands",
		Bins: []types.ClassBin{
			{Formula: "X<30", Label: "Under 30"},
			{Formula: "X>=30 and X<50", Label: "30-49"},
			{Formula: "X>=50", Label: "50+"},
		},
	}
}

func TestApply(t *testing.T) {
	e := NewEngine()
	e.Add(ageClass())

	column := []types.Value{
		types.NumberValue(25), types.NumberValue(34), types.Null(),
		types.NumberValue(61), types.NumberValue(29.9), types.TextValue("n/a"),
	}

	got, err := e.Apply(column, "AgeBands")
	require.NoError(t, err)

	want := []types.Value{
		types.NumberValue(1), types.NumberValue(2), types.Null(),
		types.NumberValue(3), types.NumberValue(1), types.Null(),
	}
	assert.Equal(t, want, got)
}

func TestApplyOverlappingBinsFirstWins(t *testing.T) {
	e := NewEngine()
	e.Add(types.Class{
		Name: "Overlap",
		Bins: []types.ClassBin{
			{Formula: "X<50", Label: "low"},
			{Formula: "X<100", Label: "lowish"},
		},
	})

	got, err := e.Apply([]types.Value{types.NumberValue(10), types.NumberValue(75)}, "Overlap")
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.NumberValue(1), types.NumberValue(2)}, got)
}

func TestApplyUnmatchedStaysNull(t *testing.T) {
	e := NewEngine()
	e.Add(types.Class{
		Name: "Narrow",
		Bins: []types.ClassBin{{Formula: "X>=18 and X<30", Label: "18-29"}},
	})

	got, err := e.Apply([]types.Value{types.NumberValue(65)}, "Narrow")
	require.NoError(t, err)
	assert.True(t, got[0].IsNull())
}

func TestApplyUnknownClass(t *testing.T) {
	e := NewEngine()
	_, err := e.Apply(nil, "Missing")
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	e := NewEngine()
	e.Add(ageClass())

	labels, err := e.Labels("AgeBands")
	require.NoError(t, err)
	assert.Equal(t, []string{"Under 30", "30-49", "50+"}, labels)
}

func TestValidate(t *testing.T) {
	e := NewEngine()
	e.Add(ageClass())
	e.Add(types.Class{Name: "Empty"})
	e.Add(types.Class{
		Name: "Broken",
		Bins: []types.ClassBin{{Formula: "Age>=18", Label: "bad"}},
	})

	problems := e.Validate()
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0].Error(), "Empty")
	assert.Contains(t, problems[1].Error(), "Broken")
}
