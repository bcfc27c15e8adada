// Package scoring holds the pure scoring rules: option weights map
// onto pole credits, accumulated credits map onto a 4-letter type
// code. Nothing here blocks or keeps state.
package scoring

import (
	"strings"

	"mindprint/internal/model"
)

// ApplyOption credits one pole of the question's dichotomy with the
// option's absolute weight. A positive weight credits the first pole,
// a negative one the second. A zero weight also lands on the second
// pole and is not treated as a tie.
//
// The score map is mutated in place. Callers own serialization; the
// session store's per-key lock is the single writer here.
func ApplyOption(scores model.Scores, dim model.Dimension, weight int) {
	pole := dim.Second()
	if weight > 0 {
		pole = dim.First()
	}
	if weight < 0 {
		weight = -weight
	}
	scores[pole] += weight
}

// ResolveType compares the two pole totals of each dichotomy in fixed
// order and concatenates the winning letters into a type code. An
// exact tie resolves to the second pole, so repeated calls on the
// same vector always produce the same code.
func ResolveType(scores model.Scores) string {
	var b strings.Builder
	b.Grow(len(model.Dimensions))
	for _, d := range model.Dimensions {
		if scores[d.First()] > scores[d.Second()] {
			b.WriteString(d.First())
		} else {
			b.WriteString(d.Second())
		}
	}
	return b.String()
}
