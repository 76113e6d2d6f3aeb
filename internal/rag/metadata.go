package rag

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/xxxsen/foliochat/internal/model"
)

// Conventions are the structural rules used when fragment metadata is
// incomplete (content ingested before frontmatter carried type/title/url).
type Conventions struct {
	CaseStudyPrefix    string `yaml:"case_study_prefix"`
	CaseStudyURLPrefix string `yaml:"case_study_url_prefix"`
	TimelineSource     string `yaml:"timeline_source"`
	TimelineTitle      string `yaml:"timeline_title"`
	TimelineURL        string `yaml:"timeline_url"`
}

func DefaultConventions() Conventions {
	return Conventions{
		CaseStudyPrefix:    "02_case-studies/",
		CaseStudyURLPrefix: "/case-studies/",
		TimelineSource:     "08_timeline.md",
		TimelineTitle:      "My journey",
		TimelineURL:        "/about",
	}
}

const (
	metaKeyType   = "type"
	metaKeyTitle  = "title"
	metaKeySlug   = "slug"
	metaKeyURL    = "url"
	metaKeyGitHub = "github"
)

// metaString is the only reader of the raw metadata map: missing keys,
// nil maps and non-string values all resolve to "".
func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	v, ok := meta[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// DocType resolves the document type: explicit tag first, then the
// case-study folder convention.
func DocType(f model.RetrievedFragment, conv Conventions) model.DocType {
	switch model.DocType(metaString(f.Metadata, metaKeyType)) {
	case model.DocTypeTimeline:
		return model.DocTypeTimeline
	case model.DocTypeCaseStudy:
		return model.DocTypeCaseStudy
	}
	if conv.CaseStudyPrefix != "" && strings.HasPrefix(f.Source, conv.CaseStudyPrefix) {
		return model.DocTypeCaseStudy
	}
	return model.DocTypeNone
}

// ResolveMeta derives the canonical document metadata of a fragment.
func ResolveMeta(f model.RetrievedFragment, conv Conventions) model.DocMeta {
	typ := DocType(f, conv)
	title := metaString(f.Metadata, metaKeyTitle)
	link := metaString(f.Metadata, metaKeyURL)
	slug := metaString(f.Metadata, metaKeySlug)
	if slug == "" {
		slug = fileStem(f.Source)
	}
	out := model.DocMeta{
		Type:   typ,
		Title:  title,
		Slug:   slug,
		URL:    link,
		GitHub: metaString(f.Metadata, metaKeyGitHub),
	}
	if typ == model.DocTypeNone || (title != "" && link != "") {
		return out
	}
	if t, u, ok := fallbackTitleURL(f.Source, typ, conv); ok {
		out.Title, out.URL = t, u
	}
	return out
}

// DocumentKey groups fragments of one logical document: slug, then title, then source.
func DocumentKey(f model.RetrievedFragment) string {
	if slug := metaString(f.Metadata, metaKeySlug); slug != "" {
		return slug
	}
	if title := metaString(f.Metadata, metaKeyTitle); title != "" {
		return title
	}
	return f.Source
}

// RepresentativePill is the single navigable link a fragment contributes,
// or the zero Pill when it has none.
func RepresentativePill(f model.RetrievedFragment, conv Conventions) model.Pill {
	meta := ResolveMeta(f, conv)
	if meta.Type != model.DocTypeNone && meta.Title != "" && meta.URL != "" {
		category := model.PillCaseStudy
		if meta.Type == model.DocTypeTimeline {
			category = model.PillTimeline
		}
		return model.Pill{Label: meta.Title, URL: meta.URL, Category: category}
	}
	if meta.GitHub != "" {
		return GitHubPill(meta.GitHub)
	}
	return model.Pill{}
}

func GitHubPill(link string) model.Pill {
	return model.Pill{Label: githubLabel(link), URL: link, Category: model.PillGitHub}
}

func githubLabel(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "GitHub"
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return "GitHub"
}

func fallbackTitleURL(source string, typ model.DocType, conv Conventions) (string, string, bool) {
	switch typ {
	case model.DocTypeTimeline:
		if conv.TimelineSource != "" && source == conv.TimelineSource {
			return conv.TimelineTitle, conv.TimelineURL, true
		}
	case model.DocTypeCaseStudy:
		if conv.CaseStudyPrefix == "" || !strings.HasPrefix(source, conv.CaseStudyPrefix) {
			return "", "", false
		}
		name := strings.TrimPrefix(source, conv.CaseStudyPrefix)
		name = strings.TrimSuffix(name, path.Ext(name))
		if name == "" {
			return "", "", false
		}
		return HumanTitle(name), conv.CaseStudyURLPrefix + name, true
	}
	return "", "", false
}

// HumanTitle turns a path segment into a display title:
// "liveLiveLove" -> "Live Live Love", "bakery-os" -> "Bakery os".
func HumanTitle(name string) string {
	var sb strings.Builder
	prevSpace := true
	for i, r := range name {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			if !prevSpace {
				sb.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		if i > 0 && unicode.IsUpper(r) && !prevSpace {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
		prevSpace = false
	}
	title := strings.TrimSpace(sb.String())
	if title == "" {
		return ""
	}
	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func fileStem(source string) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
