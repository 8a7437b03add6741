package domain

// LabeledExample is one reference row of the example store. Loaded once at
// startup and never mutated.
type LabeledExample struct {
	Content        string `json:"content"`
	Classification Label  `json:"classification"`
	Explanation    string `json:"explanation"`
	AuthorMessage  string `json:"message_to_author"`
}

// HasAuthorMessage reports whether the example carries a real author message.
func (e LabeledExample) HasAuthorMessage() bool {
	return e.AuthorMessage != "" && e.AuthorMessage != AuthorMessageNone
}
