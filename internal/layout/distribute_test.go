package layout

import "testing"

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name    string
		amount  int
		weights []int
		want    []int
	}{
		{"proportional", 100, []int{1, 1, 2}, []int{25, 25, 50}},
		{"remainder to largest fraction", 10, []int{1, 1, 1}, []int{4, 3, 3}},
		{"zero weights split evenly", 9, []int{0, 0, 0}, []int{3, 3, 3}},
		{"negative treated as zero", 6, []int{-5, 1}, []int{0, 6}},
		{"nothing to distribute", 0, []int{1, 2}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distribute(tt.amount, tt.weights)
			if len(got) != len(tt.want) {
				t.Fatalf("distribute() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("distribute() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRoundShares_PreservesSum(t *testing.T) {
	exact := []float64{33.3, 33.3, 33.4}
	got := roundShares(exact, 100)
	if sum(got) != 100 {
		t.Errorf("roundShares() = %v sums to %d, want 100", got, sum(got))
	}
}

func TestSolve(t *testing.T) {
	t.Run("unconstrained", func(t *testing.T) {
		got, clamped := solve(1000, []float64{0.3, 0.7}, []int{100, 100})
		if clamped || got[0] != 300 || got[1] != 700 {
			t.Errorf("solve() = %v, %v; want [300 700], false", got, clamped)
		}
	})

	t.Run("pins to minimum", func(t *testing.T) {
		got, clamped := solve(1000, []float64{0.05, 0.5, 0.45}, []int{200, 100, 100})
		if !clamped {
			t.Error("solve() did not report clamping")
		}
		if got[0] != 200 {
			t.Errorf("pinned share = %d, want 200", got[0])
		}
		if sum(got) != 1000 {
			t.Errorf("solve() = %v sums to %d, want 1000", got, sum(got))
		}
		// The remaining 800 keeps the 0.5:0.45 ratio.
		if got[1] < got[2] {
			t.Errorf("solve() = %v, want second share larger than third", got)
		}
	})

	t.Run("infeasible", func(t *testing.T) {
		got, clamped := solve(100, []float64{1, 1}, []int{80, 80})
		if !clamped || got[0] != 80 || got[1] != 80 {
			t.Errorf("solve() = %v, %v; want minimums", got, clamped)
		}
	})
}
