// Package registry loads the question and profile definitions once at
// startup and serves them read-only for the life of the process.
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mindprint/internal/model"
)

// shortLength is the fixed length of the short variant sequence: one
// question per dichotomy plus one supplementary E/I question.
const shortLength = 5

// Registry holds the immutable question sequences and profile table.
type Registry struct {
	full     []model.Question
	short    []model.Question
	profiles map[string]model.Profile
}

type questionsFile struct {
	Questions []model.Question `yaml:"questions"`
}

// Load reads the question and profile YAML files and validates them.
// A registry that fails validation is a deployment error, not a
// runtime condition, so Load is the only place these checks run.
func Load(questionsPath, profilesPath string) (*Registry, error) {
	qdata, err := os.ReadFile(questionsPath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	var qf questionsFile
	if err := yaml.Unmarshal(qdata, &qf); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	pdata, err := os.ReadFile(profilesPath)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	profiles := make(map[string]model.Profile)
	if err := yaml.Unmarshal(pdata, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	return New(qf.Questions, profiles)
}

// New builds a registry from already-decoded definitions.
func New(questions []model.Question, profiles map[string]model.Profile) (*Registry, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions defined")
	}
	for i, q := range questions {
		if !q.Dimension.Valid() {
			return nil, fmt.Errorf("question %d: unknown dimension %q", i, q.Dimension)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least 2 options, has %d", i, len(q.Options))
		}
	}
	if err := checkProfileTable(profiles); err != nil {
		return nil, err
	}

	r := &Registry{
		full:     questions,
		profiles: profiles,
	}
	r.short = deriveShort(questions)
	if len(r.short) < shortLength {
		return nil, fmt.Errorf("cannot derive short variant: need questions for all dimensions")
	}
	return r, nil
}

// Questions returns the sequence for a variant. The returned slice is
// shared and must be treated as read-only.
func (r *Registry) Questions(v model.Variant) []model.Question {
	if v == model.VariantShort {
		return r.short
	}
	return r.full
}

// Profile looks up the profile for a 4-letter type code.
func (r *Registry) Profile(code string) (model.Profile, bool) {
	p, ok := r.profiles[code]
	return p, ok
}

// deriveShort picks the first question of each dichotomy in order,
// then one supplementary E/I question, capped at shortLength.
func deriveShort(questions []model.Question) []model.Question {
	short := make([]model.Question, 0, shortLength)
	used := make(map[int]bool)

	for _, d := range model.Dimensions {
		for i, q := range questions {
			if q.Dimension == d && !used[i] {
				short = append(short, q)
				used[i] = true
				break
			}
		}
	}
	for i, q := range questions {
		if q.Dimension == model.DimensionEI && !used[i] {
			short = append(short, q)
			used[i] = true
			break
		}
	}
	if len(short) > shortLength {
		short = short[:shortLength]
	}
	return short
}

// checkProfileTable verifies the table covers all 16 type codes so a
// resolved code can never miss at runtime.
func checkProfileTable(profiles map[string]model.Profile) error {
	for _, ei := range []string{"E", "I"} {
		for _, sn := range []string{"S", "N"} {
			for _, tf := range []string{"T", "F"} {
				for _, jp := range []string{"J", "P"} {
					code := ei + sn + tf + jp
					if _, ok := profiles[code]; !ok {
						return fmt.Errorf("profile table missing type %s", code)
					}
				}
			}
		}
	}
	return nil
}
