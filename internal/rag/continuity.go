package rag

import (
	"regexp"
	"strings"

	"github.com/xxxsen/foliochat/internal/model"
)

// ShortTimeline is the deterministic branch: the assistant offered the short
// timeline and the visitor accepted.
type ShortTimeline struct {
	OfferPhrase string     `yaml:"offer_phrase"`
	Reply       string     `yaml:"reply"`
	Pill        model.Pill `yaml:"pill"`
}

type Continuity struct {
	Question        string
	LastAssistant   string
	EffectiveQuery  string
	FulfillingOffer bool
	// Shortcut is non-nil when the reply is canned and retrieval is skipped.
	Shortcut *Shortcut
}

type Shortcut struct {
	Reply string
	Pill  model.Pill
}

const edgePunct = ".!?;:…"

var offerPattern = regexp.MustCompile(`(?i)(do you want|want me to|shall i|want the|would you like|can i (send|give|point)|i can (send|give|point))`)

var affirmatives = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "ok": {}, "okay": {}, "sure": {},
	"show": {}, "go": {}, "go on": {}, "please": {}, "absolutely": {},
	"sounds good": {}, "let's go": {}, "lets go": {}, "do it": {}, "give me": {},
	"yes please": {}, "sure thing": {}, "please do": {}, "of course": {},
	"ok sure": {}, "okay sure": {}, "ok please": {}, "yeah please": {}, "sure please": {},
}

// IsAffirmative matches the whole reply against the whitelist; "yes but..." is not a yes.
func IsAffirmative(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.Trim(s, edgePunct+" \t\r\n")
	s = spaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return false
	}
	_, ok := affirmatives[s]
	return ok
}

func offeredSomething(assistant string) bool {
	return strings.TrimSpace(assistant) != "" && offerPattern.MatchString(assistant)
}

func offeredPhrase(assistant, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	return phrase != "" && strings.Contains(strings.ToLower(assistant), phrase)
}

// ResolveContinuity inspects the history and decides what to retrieve against.
// The history is the only state; nothing is kept between calls.
func ResolveContinuity(msgs []model.Message, timeline ShortTimeline) Continuity {
	out := Continuity{
		Question:      lastContent(msgs, model.RoleUser, 0),
		LastAssistant: lastContent(msgs, model.RoleAssistant, 0),
	}
	out.EffectiveQuery = out.Question
	if !IsAffirmative(out.Question) {
		return out
	}
	if offeredPhrase(out.LastAssistant, timeline.OfferPhrase) {
		out.Shortcut = &Shortcut{Reply: timeline.Reply, Pill: timeline.Pill}
		return out
	}
	if !offeredSomething(out.LastAssistant) {
		return out
	}
	out.FulfillingOffer = true
	if prev := lastContent(msgs, model.RoleUser, 1); prev != "" {
		out.EffectiveQuery = prev
	}
	return out
}

// lastContent returns the trimmed content of the skip-th most recent message with role.
func lastContent(msgs []model.Message, role string, skip int) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != role {
			continue
		}
		if skip == 0 {
			return strings.TrimSpace(msgs[i].Content)
		}
		skip--
	}
	return ""
}
