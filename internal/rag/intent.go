package rag

import (
	"regexp"
	"strings"

	"github.com/xxxsen/foliochat/internal/model"
)

var (
	definitionPrefix = regexp.MustCompile(`(?i)^(what is|what's|define|explain)\s+`)
	entityStrip      = regexp.MustCompile(`[^\w\s-]`)
	listDocuments    = regexp.MustCompile(`(?i)(what are your (case stud(y|ies)|projects)|(list|show)( me)?( all)?( of)?( your)? (case stud(y|ies)|projects)|all (of )?your (case stud(y|ies)|projects)|(your |all )?case stud(y|ies)\s*(\?|$))`)
	githubWords      = regexp.MustCompile(`(?i)\b(github|code|demos?|repos?|repository|source code)\b`)
	contactWords     = regexp.MustCompile(`(?i)\b(email|e-mail|phone|number|address|location|linkedin|contact|reach you|how to (contact|reach)|where (do you )?live|your (email|phone|address|number))\b`)
	journeyWords     = regexp.MustCompile(`(?i)\b(journey|timeline|experience|career|background|job history|work history|resume|cv)\b`)
	spaceRun         = regexp.MustCompile(`\s+`)
)

type question struct {
	raw     string
	norm    string
	compact string
}

func newQuestion(raw string) question {
	norm := spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
	return question{
		raw:     strings.TrimSpace(raw),
		norm:    norm,
		compact: strings.ReplaceAll(norm, " ", ""),
	}
}

type matcher func(q question, lexicon []model.DirectEntity) (model.Intent, bool)

// rules are evaluated top to bottom; patterns overlap, so order is the policy.
var rules = []matcher{
	matchDirectEntity,
	matchDefinition,
	matchPattern(model.IntentListDocuments, listDocuments),
	matchPattern(model.IntentGitHub, githubWords),
	matchPattern(model.IntentContact, contactWords),
	matchPattern(model.IntentJourney, journeyWords),
}

// Classify maps a question to exactly one intent. GENERAL is the catch-all.
func Classify(raw string, lexicon []model.DirectEntity) model.Intent {
	q := newQuestion(raw)
	for _, match := range rules {
		if intent, ok := match(q, lexicon); ok {
			return intent
		}
	}
	return model.Intent{Kind: model.IntentGeneral}
}

// IsContact reports whether the text asks for contact details.
func IsContact(raw string) bool {
	return contactWords.MatchString(strings.TrimSpace(raw))
}

func matchDirectEntity(q question, lexicon []model.DirectEntity) (model.Intent, bool) {
	for i := range lexicon {
		entity := &lexicon[i]
		names := append([]string{entity.Name}, entity.Aliases...)
		for _, name := range names {
			key := compact(name)
			if key != "" && strings.Contains(q.compact, key) {
				return model.Intent{Kind: model.IntentDirectEntity, Target: entity}, true
			}
		}
	}
	return model.Intent{}, false
}

func matchDefinition(q question, _ []model.DirectEntity) (model.Intent, bool) {
	loc := definitionPrefix.FindStringIndex(q.raw)
	if loc == nil {
		return model.Intent{}, false
	}
	entity := NormalizeEntity(q.raw[loc[1]:])
	if entity == "" {
		return model.Intent{}, false
	}
	return model.Intent{Kind: model.IntentDefinition, Entity: entity}, true
}

func matchPattern(kind model.IntentKind, re *regexp.Regexp) matcher {
	return func(q question, _ []model.DirectEntity) (model.Intent, bool) {
		if re.MatchString(q.raw) {
			return model.Intent{Kind: kind}, true
		}
		return model.Intent{}, false
	}
}

// NormalizeEntity keeps letters, digits, underscore and hyphen, lower-cased
// with single spaces.
func NormalizeEntity(s string) string {
	s = entityStrip.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func compact(s string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(s), "")
}
