package model

// Profile is the descriptive payload for one 4-letter type code. The
// engine treats everything beyond the key as opaque presentation data.
type Profile struct {
	Description string   `json:"description" yaml:"description" bson:"description"`
	Characters  []string `json:"characters" yaml:"characters" bson:"characters"`
	Traits      []string `json:"traits" yaml:"traits" bson:"traits"`
	Suggestions []string `json:"suggestions" yaml:"suggestions" bson:"suggestions"`
}
