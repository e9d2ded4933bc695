package layout

import (
	"math"
	"sort"
)

// distribute splits amount into integer shares proportional to weights
// using largest-remainder rounding. The shares always sum to amount. When
// every weight is zero the amount is split evenly.
func distribute(amount int, weights []int) []int {
	shares := make([]int, len(weights))
	if len(weights) == 0 || amount <= 0 {
		return shares
	}

	total := 0
	for _, w := range weights {
		total += max(w, 0)
	}
	exact := make([]float64, len(weights))
	for i, w := range weights {
		if total == 0 {
			exact[i] = float64(amount) / float64(len(weights))
		} else {
			exact[i] = float64(amount) * float64(max(w, 0)) / float64(total)
		}
	}
	return roundShares(exact, amount)
}

// roundShares floors each exact share and hands the remaining units to the
// largest fractional parts, earliest index first on ties.
func roundShares(exact []float64, sum int) []int {
	shares := make([]int, len(exact))
	assigned := 0
	for i, v := range exact {
		shares[i] = int(math.Floor(v))
		assigned += shares[i]
	}

	order := make([]int, len(exact))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa := exact[order[a]] - math.Floor(exact[order[a]])
		fb := exact[order[b]] - math.Floor(exact[order[b]])
		return fa > fb
	})
	for i := 0; assigned < sum && len(order) > 0; i = (i + 1) % len(order) {
		shares[order[i]]++
		assigned++
	}
	return shares
}
