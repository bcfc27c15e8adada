package model

// Dimension identifies one of the four trait dichotomies. The two
// letters are the poles in fixed order: a positively weighted option
// credits the first pole, a non-positive one the second.
type Dimension string

const (
	DimensionEI Dimension = "EI"
	DimensionSN Dimension = "SN"
	DimensionTF Dimension = "TF"
	DimensionJP Dimension = "JP"
)

// Dimensions lists the dichotomies in the order their letters appear
// in a type code. Do not reorder.
var Dimensions = []Dimension{DimensionEI, DimensionSN, DimensionTF, DimensionJP}

// First returns the letter of the first pole (E, S, T, J).
func (d Dimension) First() string { return string(d[0]) }

// Second returns the letter of the second pole (I, N, F, P).
func (d Dimension) Second() string { return string(d[1]) }

// Valid reports whether d is one of the four known dichotomies.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionEI, DimensionSN, DimensionTF, DimensionJP:
		return true
	}
	return false
}

// Option is a single answer choice. The weight's sign selects the
// pole that receives credit; its magnitude is the amount.
type Option struct {
	Text   string `json:"text" yaml:"text"`
	Weight int    `json:"weight" yaml:"weight"`
}

// Question is an immutable quiz question loaded once at startup.
type Question struct {
	Text      string    `json:"text" yaml:"text"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Options   []Option  `json:"options" yaml:"options"`
}

// Scores accumulates weight per pole letter across a quiz run.
type Scores map[string]int

// NewScores returns a score vector with all eight poles at zero.
func NewScores() Scores {
	s := make(Scores, 8)
	for _, d := range Dimensions {
		s[d.First()] = 0
		s[d.Second()] = 0
	}
	return s
}

// Clone returns an independent copy of the score vector.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
