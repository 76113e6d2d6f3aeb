package model

type PillCategory string

const (
	PillCaseStudy PillCategory = "case-study"
	PillTimeline  PillCategory = "timeline"
	PillGitHub    PillCategory = "github"
	PillContact   PillCategory = "contact"
	PillPrompt    PillCategory = "prompt"
)

// PromptURLPrefix marks a pill that re-submits a follow-up question instead of navigating.
const PromptURLPrefix = "prompt:"

type Pill struct {
	Label    string       `json:"label" yaml:"label"`
	URL      string       `json:"url" yaml:"url"`
	Category PillCategory `json:"category" yaml:"category"`
}

func (p Pill) IsZero() bool {
	return p.URL == ""
}

func PromptPill(label, prompt string) Pill {
	return Pill{Label: label, URL: PromptURLPrefix + prompt, Category: PillPrompt}
}
