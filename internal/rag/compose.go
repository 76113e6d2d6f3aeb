package rag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/foliochat/internal/model"
	appErr "github.com/xxxsen/foliochat/internal/pkg/errors"
)

const (
	NoContext     = "No relevant information found."
	EmptyReply    = "I'm having trouble responding right now. Please try again."
	blockSep      = "\n\n---\n\n"
	contactSource = "SOURCE: contact\n"
)

// BuildContext renders the grounding text handed to the completion service.
func BuildContext(frags []model.RetrievedFragment) string {
	if len(frags) == 0 {
		return NoContext
	}
	blocks := make([]string, 0, len(frags))
	for _, f := range frags {
		section := f.Section
		if section == "" {
			section = "N/A"
		}
		blocks = append(blocks, fmt.Sprintf("SOURCE: %s | SECTION: %s\n%s", f.Source, section, f.Content))
	}
	return strings.Join(blocks, blockSep)
}

// ContactContext wraps the hand-authored contact block; contact answers never depend on recall.
func ContactContext(block string) string {
	return contactSource + strings.TrimSpace(block)
}

type PromptInput struct {
	SystemPrompt string
	Context      string
	Intent       model.Intent
	// Contact marks Context as the contact block; it forces the contact
	// instruction whatever the intent.
	Contact    bool
	Continuity Continuity
	// Structured asks for the JSON answer contract parsed by ParseStructured.
	Structured  bool
	CaseStudies []string
}

// BuildPrompt assembles the completion messages. The visitor's literal
// question is always last.
func BuildPrompt(in PromptInput) []model.Message {
	msgs := []model.Message{
		{Role: model.RoleSystem, Content: in.SystemPrompt},
		{Role: model.RoleSystem, Content: "SOURCES:\n\n" + in.Context},
	}
	if hint := intentHint(in.Intent, in.Contact); hint != "" {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: hint})
	}
	if in.Continuity.FulfillingOffer {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: fmt.Sprintf(
			`The user replied "yes" to your previous message. Your previous message was: """%s""" Fulfill the offer you made: provide the resource, detail or next step. Do not ask again or repeat the question; just do it in a short, direct way.`,
			in.Continuity.LastAssistant)})
	}
	if in.Structured {
		msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: structuredInstruction(in.CaseStudies)})
	}
	return append(msgs, model.Message{Role: model.RoleUser, Content: in.Continuity.Question})
}

const contactHint = "The user is asking for contact or personal information. The SOURCES contain the contact details (email, phone, address, LinkedIn, GitHub). You MUST give the exact information they asked for from SOURCES. Do not refuse, redirect, or say you don't have it."

func intentHint(intent model.Intent, contact bool) string {
	if contact {
		return contactHint
	}
	switch intent.Kind {
	case model.IntentJourney:
		return "The user is asking about my career path. Answer as a short chronological timeline list, one line per period, using only dates that appear in SOURCES."
	case model.IntentContact:
		return contactHint
	case model.IntentDefinition:
		return fmt.Sprintf("The user wants to know what %q is. Explain it directly from SOURCES in a few sentences.", intent.Entity)
	case model.IntentListDocuments:
		return "The user wants an overview of my case studies. Name each one found in SOURCES with a one-line description."
	}
	return ""
}

func structuredInstruction(caseStudies []string) string {
	var sb strings.Builder
	sb.WriteString(`Respond with a single JSON object and nothing else: {"answer": "<your reply, plain text>", "referenced": ["<title of every case study your answer talks about>"]}.`)
	if len(caseStudies) > 0 {
		sb.WriteString(" Known case studies: ")
		sb.WriteString(strings.Join(caseStudies, ", "))
		sb.WriteString(".")
	}
	return sb.String()
}

type StructuredAnswer struct {
	Answer     string   `json:"answer"`
	Referenced []string `json:"referenced"`
}

// ParseStructured decodes the JSON answer contract. Code fences and text
// around the object are tolerated; anything else is ErrMalformed.
func ParseStructured(raw string) (*StructuredAnswer, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in completion: %w", appErr.ErrMalformed)
	}
	var out StructuredAnswer
	if err := json.Unmarshal([]byte(clean[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode completion: %v: %w", err, appErr.ErrMalformed)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return nil, fmt.Errorf("completion has empty answer: %w", appErr.ErrMalformed)
	}
	return &out, nil
}
