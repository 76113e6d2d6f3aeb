package rag

import (
	"strings"

	"github.com/xxxsen/foliochat/internal/model"
)

type PillLimits struct {
	Default       int `json:"default"`
	ListDocuments int `json:"list_documents"`
	Contact       int `json:"contact"`
	GitHub        int `json:"github"`
	Prompt        int `json:"prompt"`
}

func DefaultPillLimits() PillLimits {
	return PillLimits{
		Default:       1,
		ListDocuments: 10,
		Contact:       4,
		GitHub:        3,
		Prompt:        3,
	}
}

type SelectInput struct {
	Intent    model.Intent
	Docs      []model.ResolvedDocument
	Fragments []model.RetrievedFragment
	Polarity  model.ScorePolarity

	ContactPills []model.Pill
	TimelinePill model.Pill

	// PromptPills turns document lists into "tell me more" prompt pills.
	PromptPills bool
	// Catalog lists every known case study; nil means use Docs.
	Catalog []model.DocMeta
	// Referenced holds the case studies a structured completion said it used.
	Referenced []string

	Limits PillLimits
}

// SelectPills decides which links go under the answer. The first branch
// that applies wins; the result never repeats a URL.
func SelectPills(in SelectInput) []model.Pill {
	switch in.Intent.Kind {
	case model.IntentDirectEntity:
		if in.Intent.Target != nil && !in.Intent.Target.Pill.IsZero() {
			return []model.Pill{in.Intent.Target.Pill}
		}
		return nil
	case model.IntentDefinition:
		return finish(definitionPills(in), 1)
	case model.IntentGitHub:
		if pills := githubPills(in.Fragments); len(pills) > 0 {
			return finish(pills, in.Limits.GitHub)
		}
		return finish(bestPills(in), in.Limits.Default)
	case model.IntentContact:
		return finish(in.ContactPills, in.Limits.Contact)
	case model.IntentListDocuments:
		if in.PromptPills {
			return finish(promptPills(catalog(in)), in.Limits.ListDocuments)
		}
		return finish(caseStudyPills(in.Docs), in.Limits.ListDocuments)
	case model.IntentJourney:
		pills := finish(bestPills(in), in.Limits.Default)
		if !in.TimelinePill.IsZero() {
			pills = append(pills, in.TimelinePill)
		}
		return DedupeByURL(pills)
	}
	if refs := referencedCaseStudies(in); len(refs) > 1 {
		return finish(promptPills(refs), in.Limits.Prompt)
	}
	return finish(bestPills(in), in.Limits.Default)
}

func definitionPills(in SelectInput) []model.Pill {
	entity := in.Intent.Entity
	if entity == "" {
		return nil
	}
	var matched []model.ResolvedDocument
	for _, d := range in.Docs {
		if d.Meta.Type == model.DocTypeCaseStudy && MatchesEntity(entity, d.Meta) {
			matched = append(matched, d)
		}
	}
	return links(SortByScore(matched, in.Polarity))
}

func githubPills(frags []model.RetrievedFragment) []model.Pill {
	var pills []model.Pill
	for _, f := range frags {
		if link := metaString(f.Metadata, metaKeyGitHub); link != "" {
			pills = append(pills, GitHubPill(link))
		}
	}
	return pills
}

func caseStudyPills(docs []model.ResolvedDocument) []model.Pill {
	var pills []model.Pill
	for _, d := range docs {
		if d.Meta.Type == model.DocTypeCaseStudy && d.Link.URL != "" {
			pills = append(pills, d.Link)
		}
	}
	return pills
}

func bestPills(in SelectInput) []model.Pill {
	return links(SortByScore(in.Docs, in.Polarity))
}

func catalog(in SelectInput) []model.DocMeta {
	if in.Catalog != nil {
		return in.Catalog
	}
	var out []model.DocMeta
	for _, d := range FilterType(in.Docs, model.DocTypeCaseStudy) {
		out = append(out, d.Meta)
	}
	return out
}

func referencedCaseStudies(in SelectInput) []model.DocMeta {
	if !in.PromptPills || len(in.Referenced) == 0 {
		return nil
	}
	var out []model.DocMeta
	seen := make(map[string]bool)
	for _, meta := range catalog(in) {
		key := strings.ToLower(meta.Slug + "|" + meta.Title)
		if seen[key] {
			continue
		}
		for _, ref := range in.Referenced {
			if MatchesEntity(NormalizeEntity(ref), meta) {
				seen[key] = true
				out = append(out, meta)
				break
			}
		}
	}
	return out
}

func promptPills(metas []model.DocMeta) []model.Pill {
	var pills []model.Pill
	for _, meta := range metas {
		title := meta.Title
		if title == "" {
			title = HumanTitle(meta.Slug)
		}
		if title == "" {
			continue
		}
		pills = append(pills, model.PromptPill(title, "Tell me more about "+title))
	}
	return pills
}

// MatchesEntity: slug equality ignoring case and spaces, or title
// containment in either direction.
func MatchesEntity(entity string, meta model.DocMeta) bool {
	if entity == "" {
		return false
	}
	slug := strings.ToLower(meta.Slug)
	title := strings.ToLower(meta.Title)
	entityC := compact(entity)
	slugC := compact(slug)
	titleC := compact(title)
	if slugC != "" && (slugC == entityC || strings.Contains(entityC, slugC)) {
		return true
	}
	if title == "" {
		return false
	}
	return strings.Contains(title, entity) || strings.Contains(titleC, entityC) || strings.Contains(entityC, titleC)
}

// DedupeByURL keeps the first pill for every URL.
func DedupeByURL(pills []model.Pill) []model.Pill {
	seen := make(map[string]bool, len(pills))
	out := make([]model.Pill, 0, len(pills))
	for _, p := range pills {
		if p.IsZero() || seen[p.URL] {
			continue
		}
		seen[p.URL] = true
		out = append(out, p)
	}
	return out
}

func finish(pills []model.Pill, limit int) []model.Pill {
	out := DedupeByURL(pills)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func links(docs []model.ResolvedDocument) []model.Pill {
	out := make([]model.Pill, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Link)
	}
	return out
}
