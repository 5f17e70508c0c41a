package expand

import "testing"

func TestEvalArith(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars map[string]string
		want int64
	}{
		{"addition", "1 + 2", nil, 3},
		{"precedence", "2 + 3 * 4", nil, 14},
		{"parens", "(2 + 3) * 4", nil, 20},
		{"variable", "x + 1", map[string]string{"x": "41"}, 42},
		{"ternary", "1 ? 2 : 3", nil, 2},
		{"comparison", "5 > 3", nil, 1},
		{"power", "2 ** 10", nil, 1024},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vars := &fakeVars{scalars: tc.vars}
			got, err := EvalArith(tc.expr, vars)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("EvalArith(%q) = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}
