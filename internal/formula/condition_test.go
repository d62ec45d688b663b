package formula

import (
	"reflect"
	"testing"

	"github.com/staats/staats/pkg/types"
)

func TestParseConditions(t *testing.T) {
	tests := []struct {
		name      string
		formula   string
		wantConds []Condition
		wantJoins []JoinOp
		wantErr   bool
	}{
		{
			name:      "single equality",
			formula:   `["S9"=1]`,
			wantConds: []Condition{{Variable: "S9", Op: OpEq, Value: 1}},
		},
		{
			name:      "decimal value",
			formula:   `["Weight">=0.5]`,
			wantConds: []Condition{{Variable: "Weight", Op: OpGe, Value: 0.5}},
		},
		{
			name:    "default join is and",
			formula: `["Age">=18] ["Age"<30]`,
			wantConds: []Condition{
				{Variable: "Age", Op: OpGe, Value: 18},
				{Variable: "Age", Op: OpLt, Value: 30},
			},
			wantJoins: []JoinOp{JoinAnd},
		},
		{
			name:    "explicit or",
			formula: `["S9"=1] or ["S9"=2]`,
			wantConds: []Condition{
				{Variable: "S9", Op: OpEq, Value: 1},
				{Variable: "S9", Op: OpEq, Value: 2},
			},
			wantJoins: []JoinOp{JoinOr},
		},
		{
			name:    "mixed joins resolved per gap",
			formula: `["A"=1] and ["B"=2] or ["C"=3]`,
			wantConds: []Condition{
				{Variable: "A", Op: OpEq, Value: 1},
				{Variable: "B", Op: OpEq, Value: 2},
				{Variable: "C", Op: OpEq, Value: 3},
			},
			wantJoins: []JoinOp{JoinAnd, JoinOr},
		},
		{
			name:      "contains set",
			formula:   `["Q23A"C1,2, 4]`,
			wantConds: []Condition{{Variable: "Q23A", Op: OpContains, Set: []int{1, 2, 4}}},
		},
		{
			name:      "contains only",
			formula:   `["Q23A"CO1,2]`,
			wantConds: []Condition{{Variable: "Q23A", Op: OpContainsOnly, Set: []int{1, 2}}},
		},
		{
			name:      "not contains only",
			formula:   `["Q23A"NCO3]`,
			wantConds: []Condition{{Variable: "Q23A", Op: OpNotContainsOnly, Set: []int{3}}},
		},
		{
			name:      "not equal",
			formula:   `["S9"!=9]`,
			wantConds: []Condition{{Variable: "S9", Op: OpNe, Value: 9}},
		},
		{
			name:    "no conditions",
			formula: "just some text",
			wantErr: true,
		},
		{
			name:    "empty formula",
			formula: "",
			wantErr: true,
		},
		{
			name:      "malformed atom skipped",
			formula:   `["broken" ["S9"=1]`,
			wantConds: []Condition{{Variable: "S9", Op: OpEq, Value: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, joins, err := Parse(tt.formula)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(conds, tt.wantConds) {
				t.Errorf("conditions = %+v, want %+v", conds, tt.wantConds)
			}
			if len(tt.wantJoins) > 0 && !reflect.DeepEqual(joins, tt.wantJoins) {
				t.Errorf("joins = %v, want %v", joins, tt.wantJoins)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables(`["Age">=18] and ["S9"=1] or ["Age"<30]`)
	want := []string{"Age", "S9"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := ExtractVariables("no references here"); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func testSchema() *types.DataMap {
	m := types.NewDataMap()
	m.Add(&types.Question{Name: "S9", Kind: types.SingleChoice, Codes: map[int]string{1: "North", 2: "South", 3: "East"}})
	m.Add(&types.Question{Name: "Q23A", Kind: types.MultiChoice, Codes: map[int]string{1: "A", 2: "B", 3: "C", 4: "D"}})
	m.Add(&types.Question{Name: "Age", Kind: types.Numeric})
	return m
}

func testData(t *testing.T) *types.Dataset {
	t.Helper()
	d := types.NewDataset(6)
	mustAdd := func(name string, vals []types.Value) {
		if err := d.AddColumn(name, vals); err != nil {
			t.Fatalf("AddColumn(%s): %v", name, err)
		}
	}
	mustAdd("S9", []types.Value{
		types.NumberValue(1), types.NumberValue(2), types.NumberValue(1),
		types.NumberValue(3), types.NumberValue(1), types.NumberValue(2),
	})
	mustAdd("Q23A", []types.Value{
		types.TextValue("1,2"), types.TextValue("2"), types.TextValue("1,2,4"),
		types.Null(), types.TextValue("3"), types.TextValue("2,1"),
	})
	mustAdd("Age", []types.Value{
		types.NumberValue(25), types.NumberValue(34), types.NumberValue(19),
		types.Null(), types.NumberValue(61), types.NumberValue(42),
	})
	return d
}

func TestEvaluate(t *testing.T) {
	schema := testSchema()
	data := testData(t)

	tests := []struct {
		name    string
		formula string
		want    []bool
	}{
		{"equality", `["S9"=1]`, []bool{true, false, true, false, true, false}},
		{"range and", `["Age">=18] and ["Age"<30]`, []bool{true, false, true, false, false, false}},
		{"or", `["S9"=2] or ["S9"=3]`, []bool{false, true, false, true, false, true}},
		{"contains", `["Q23A"C1]`, []bool{true, false, true, false, false, true}},
		{"contains any of set", `["Q23A"C3,4]`, []bool{false, false, true, false, true, false}},
		{"not contains skips null", `["Q23A"NC1]`, []bool{false, true, false, false, true, false}},
		{"contains only order free", `["Q23A"CO1,2]`, []bool{true, false, false, false, false, true}},
		{"not contains only skips null", `["Q23A"NCO2]`, []bool{true, false, true, false, true, true}},
		{"null numeric never matches", `["Age"<100]`, []bool{true, true, true, false, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(data, tt.formula, schema)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateUnknownVariable(t *testing.T) {
	schema := testSchema()
	data := testData(t)

	if _, err := Evaluate(data, `["Nope"=1]`, schema); err == nil {
		t.Fatal("expected unknown variable error")
	}
}
