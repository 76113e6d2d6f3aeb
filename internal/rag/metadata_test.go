package rag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
)

func TestResolveMeta(t *testing.T) {
	conv := DefaultConventions()
	tests := []struct {
		name string
		frag model.RetrievedFragment
		want model.DocMeta
	}{
		{
			name: "explicit metadata wins",
			frag: model.RetrievedFragment{
				Source: "02_case-studies/jucosa.md",
				Metadata: map[string]interface{}{
					"type": "case-study", "title": "Jucosa", "slug": "jucosa", "url": "/case-studies/jucosa",
				},
			},
			want: model.DocMeta{Type: model.DocTypeCaseStudy, Title: "Jucosa", Slug: "jucosa", URL: "/case-studies/jucosa"},
		},
		{
			name: "legacy case study from folder convention",
			frag: model.RetrievedFragment{Source: "02_case-studies/liveLiveLove.md"},
			want: model.DocMeta{Type: model.DocTypeCaseStudy, Title: "Live Live Love", Slug: "liveLiveLove", URL: "/case-studies/liveLiveLove"},
		},
		{
			name: "timeline singleton",
			frag: model.RetrievedFragment{Source: "08_timeline.md", Metadata: map[string]interface{}{"type": "timeline"}},
			want: model.DocMeta{Type: model.DocTypeTimeline, Title: "My journey", Slug: "08_timeline", URL: "/about"},
		},
		{
			name: "unknown type gets no fallback",
			frag: model.RetrievedFragment{Source: "01_about/bio.md", Metadata: map[string]interface{}{"title": "Bio"}},
			want: model.DocMeta{Title: "Bio", Slug: "bio"},
		},
		{
			name: "non string values are ignored",
			frag: model.RetrievedFragment{
				Source:   "notes.txt",
				Metadata: map[string]interface{}{"type": 3, "title": []string{"x"}, "slug": nil, "github": " https://github.com/a/b "},
			},
			want: model.DocMeta{Slug: "notes", GitHub: "https://github.com/a/b"},
		},
		{
			name: "url without title falls back for case study",
			frag: model.RetrievedFragment{Source: "02_case-studies/bakery-os.md", Metadata: map[string]interface{}{"url": "https://x.io"}},
			want: model.DocMeta{Type: model.DocTypeCaseStudy, Title: "Bakery os", Slug: "bakery-os", URL: "/case-studies/bakery-os"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveMeta(tt.frag, conv))
		})
	}
}

func TestDocumentKey(t *testing.T) {
	require.Equal(t, "jucosa", DocumentKey(model.RetrievedFragment{Source: "a.md", Metadata: map[string]interface{}{"slug": " jucosa ", "title": "Jucosa"}}))
	require.Equal(t, "Jucosa", DocumentKey(model.RetrievedFragment{Source: "a.md", Metadata: map[string]interface{}{"slug": "", "title": "Jucosa"}}))
	require.Equal(t, "a.md", DocumentKey(model.RetrievedFragment{Source: "a.md"}))
}

func TestRepresentativePill(t *testing.T) {
	conv := DefaultConventions()

	p := RepresentativePill(model.RetrievedFragment{Source: "02_case-studies/jucosa.md"}, conv)
	require.Equal(t, model.Pill{Label: "Jucosa", URL: "/case-studies/jucosa", Category: model.PillCaseStudy}, p)

	p = RepresentativePill(model.RetrievedFragment{Source: "08_timeline.md", Metadata: map[string]interface{}{"type": "timeline"}}, conv)
	require.Equal(t, model.PillTimeline, p.Category)
	require.Equal(t, "/about", p.URL)

	p = RepresentativePill(model.RetrievedFragment{Source: "misc.md", Metadata: map[string]interface{}{"github": "https://github.com/justaurelia/ml-lab/"}}, conv)
	require.Equal(t, model.Pill{Label: "ml-lab", URL: "https://github.com/justaurelia/ml-lab/", Category: model.PillGitHub}, p)

	require.True(t, RepresentativePill(model.RetrievedFragment{Source: "misc.md"}, conv).IsZero())
}

func TestHumanTitle(t *testing.T) {
	require.Equal(t, "Jucosa", HumanTitle("jucosa"))
	require.Equal(t, "Live Live Love", HumanTitle("liveLiveLove"))
	require.Equal(t, "My side project", HumanTitle("my_side-project"))
	require.Equal(t, "", HumanTitle("--"))
}

func TestGitHubLabel(t *testing.T) {
	require.Equal(t, "repo", githubLabel("https://github.com/user/repo"))
	require.Equal(t, "GitHub", githubLabel("https://github.com/"))
	require.Equal(t, "GitHub", githubLabel("not a url"))
}
