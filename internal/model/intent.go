package model

type IntentKind string

const (
	IntentListDocuments IntentKind = "list_documents"
	IntentDefinition    IntentKind = "definition"
	IntentDirectEntity  IntentKind = "direct_entity"
	IntentGitHub        IntentKind = "github"
	IntentContact       IntentKind = "contact"
	IntentJourney       IntentKind = "journey"
	IntentGeneral       IntentKind = "general"
)

// Intent is the single classification governing one request.
// Entity is set for IntentDefinition, Target for IntentDirectEntity.
type Intent struct {
	Kind   IntentKind
	Entity string
	Target *DirectEntity
}

type DirectEntity struct {
	Name    string   `json:"name" yaml:"name"`
	Aliases []string `json:"aliases" yaml:"aliases"`
	Pill    Pill     `json:"pill" yaml:"pill"`
}
