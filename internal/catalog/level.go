package catalog

// Level is one leadership-evaluation persona. Levels are ordered by ID.
type Level struct {
	// ID is the level number, starting at 1.
	ID int

	// Title is the sidebar label, e.g. "Level 1".
	Title string

	// Summary is a one-line description shown for unlocked levels.
	Summary string

	// PromptTemplate is the evaluation prompt prepended to the user's argument.
	PromptTemplate string
}

// Preview returns the summary truncated to max runes, with an ellipsis
// when it was cut.
func (l Level) Preview(max int) string {
	r := []rune(l.Summary)
	if max <= 0 || len(r) <= max {
		return l.Summary
	}
	return string(r[:max]) + "..."
}
