package recode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staats/staats/pkg/types"
)

func TestCalculateAllAppendsColumnsAndQuestions(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.AddDef(Def{
		Name: "AgeGroup",
		Kind: KindSingleChoice,
		Formula: `1: ["Age"<30]
2: ["Age">=30]`,
		Codes: map[int]string{1: "Under 30", 2: "30+"},
	}))
	require.NoError(t, e.AddDef(Def{
		Name:    "BrandCount",
		Kind:    KindNumberOfAnswers,
		Formula: `["Q23A"]`,
	}))

	data := testData(t)
	schema := testSchema()
	before := data.NumColumns()

	require.NoError(t, e.CalculateAll(data, schema))

	assert.Equal(t, before+2, data.NumColumns())

	q, ok := schema.Lookup("AgeGroup")
	require.True(t, ok)
	assert.Equal(t, types.SingleChoice, q.Kind)
	assert.Equal(t, map[int]string{1: "Under 30", 2: "30+"}, q.Codes)

	q, ok = schema.Lookup("BrandCount")
	require.True(t, ok)
	assert.Equal(t, types.Numeric, q.Kind)

	col, ok := data.Column("AgeGroup")
	require.True(t, ok)
	n, _ := col[0].Number()
	assert.Equal(t, 1.0, n)
}

func TestCalculateAllLaterRecodeSeesEarlierColumn(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.AddDef(Def{
		Name: "AgeGroup",
		Kind: KindSingleChoice,
		Formula: `1: ["Age"<30]
2: ["Age">=30]`,
	}))
	require.NoError(t, e.AddDef(Def{
		Name: "IsYoung",
		Kind: KindSingleChoice,
		Formula: `1: ["AgeGroup"=1]
2: ["AgeGroup"=2]`,
	}))

	data := testData(t)
	schema := testSchema()
	require.NoError(t, e.CalculateAll(data, schema))

	col, ok := data.Column("IsYoung")
	require.True(t, ok)
	n, _ := col[0].Number()
	assert.Equal(t, 1.0, n)
}

func TestCalculateAllFailFastKeepsEarlierColumns(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.AddDef(Def{
		Name:    "Good",
		Kind:    KindSingleChoice,
		Formula: `1: ["Age"<30]`,
	}))
	require.NoError(t, e.AddDef(Def{
		Name:    "Bad",
		Kind:    KindSingleChoice,
		Formula: `1: ["Nope"=1]`,
	}))

	data := testData(t)
	schema := testSchema()
	err := e.CalculateAll(data, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad")

	// The column computed before the failure stays in place.
	assert.True(t, data.HasColumn("Good"))
	assert.False(t, data.HasColumn("Bad"))
}

func TestValidate(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.AddDef(Def{
		Name:    "AgeGroup",
		Kind:    KindSingleChoice,
		Formula: `1: ["Age"<30]`,
	}))
	require.NoError(t, e.AddDef(Def{
		Name:    "ChainOK",
		Kind:    KindSingleChoice,
		Formula: `1: ["AgeGroup"=1]`,
	}))
	require.NoError(t, e.AddDef(Def{
		Name:    "Age",
		Kind:    KindSingleChoice,
		Formula: `1: ["Age"<30]`,
	}))
	require.NoError(t, e.AddDef(Def{
		Name:    "Dangling",
		Kind:    KindSingleChoice,
		Formula: `1: ["Missing"=1]`,
	}))

	problems := e.Validate(testSchema())
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0].Error(), "Age")
	assert.Contains(t, problems[1].Error(), "Missing")
}
