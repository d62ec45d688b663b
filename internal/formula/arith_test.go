package formula

import (
	"reflect"
	"testing"

	"github.com/staats/staats/pkg/types"
)

func TestParseArithmeticVariables(t *testing.T) {
	e, err := ParseArithmetic(`(["Height"] / 100) * (["Height"] / 100) + ["Offset"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Height", "Offset"}
	if !reflect.DeepEqual(e.Variables(), want) {
		t.Errorf("got %v, want %v", e.Variables(), want)
	}
}

func TestArithmeticErrors(t *testing.T) {
	for _, formula := range []string{
		"",
		"1 +",
		"(1 + 2",
		`["Height] + 1`,
		"1 $ 2",
		"1 2",
	} {
		if _, err := ParseArithmetic(formula); err == nil {
			t.Errorf("ParseArithmetic(%q): expected error", formula)
		}
	}
}

func TestArithmeticEvaluate(t *testing.T) {
	d := types.NewDataset(4)
	if err := d.AddColumn("A", []types.Value{
		types.NumberValue(10), types.NumberValue(20), types.Null(), types.NumberValue(5),
	}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddColumn("B", []types.Value{
		types.NumberValue(2), types.NumberValue(0), types.NumberValue(3), types.NumberValue(1),
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		formula string
		want    []types.Value
	}{
		{
			name:    "precedence",
			formula: `["A"] + ["B"] * 2`,
			want: []types.Value{
				types.NumberValue(14), types.NumberValue(20), types.Null(), types.NumberValue(7),
			},
		},
		{
			name:    "division by zero yields null",
			formula: `["A"] / ["B"]`,
			want: []types.Value{
				types.NumberValue(5), types.Null(), types.Null(), types.NumberValue(5),
			},
		},
		{
			name:    "unary minus and parens",
			formula: `-(["A"] - 10)`,
			want: []types.Value{
				types.NumberValue(0), types.NumberValue(-10), types.Null(), types.NumberValue(5),
			},
		},
		{
			name:    "constant only",
			formula: "2 * 3.5",
			want: []types.Value{
				types.NumberValue(7), types.NumberValue(7), types.NumberValue(7), types.NumberValue(7),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseArithmetic(tt.formula)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := e.Evaluate(d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArithmeticUnknownColumn(t *testing.T) {
	d := types.NewDataset(1)
	e, err := ParseArithmetic(`["Missing"] + 1`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Evaluate(d); err == nil {
		t.Fatal("expected unknown variable error")
	}
}
