package widgets

const instructionsText = "Press the Lightbulb button tool at the top of the screen."

// InstructionsProvider places a single informational banner in the
// start section of the bottom panel. Stateless; no lifecycle beyond
// registration.
type InstructionsProvider struct{}

func (InstructionsProvider) ID() string { return "InstructionsProvider" }

func (InstructionsProvider) Widgets(loc Location, sec Section) []Widget {
	if loc != LocationBottom || sec != SectionStart {
		return nil
	}
	return []Widget{{
		ID:      "instructions-widget",
		Label:   "Instructions",
		Content: instructionsText,
	}}
}
