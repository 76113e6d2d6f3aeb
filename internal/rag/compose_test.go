package rag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
	appErr "github.com/xxxsen/foliochat/internal/pkg/errors"
)

func TestBuildContext(t *testing.T) {
	require.Equal(t, NoContext, BuildContext(nil))

	got := BuildContext([]model.RetrievedFragment{
		{Source: "02_case-studies/jucosa.md", Section: "Overview", Content: "Jucosa is a juice bar app."},
		{Source: "08_timeline.md", Content: "2019: started."},
	})
	require.Equal(t, "SOURCE: 02_case-studies/jucosa.md | SECTION: Overview\nJucosa is a juice bar app.\n\n---\n\nSOURCE: 08_timeline.md | SECTION: N/A\n2019: started.", got)
}

func TestContactContext(t *testing.T) {
	require.Equal(t, "SOURCE: contact\nEmail: me@example.com", ContactContext("\nEmail: me@example.com\n"))
}

func TestBuildPrompt(t *testing.T) {
	msgs := BuildPrompt(PromptInput{
		SystemPrompt: "You are Aurélia.",
		Context:      "ctx",
		Intent:       model.Intent{Kind: model.IntentGeneral},
		Continuity:   Continuity{Question: "How do you work?"},
	})
	require.Equal(t, []model.Message{
		{Role: model.RoleSystem, Content: "You are Aurélia."},
		{Role: model.RoleSystem, Content: "SOURCES:\n\nctx"},
		{Role: model.RoleUser, Content: "How do you work?"},
	}, msgs)
}

func TestBuildPromptOfferAndStructured(t *testing.T) {
	msgs := BuildPrompt(PromptInput{
		SystemPrompt: "sys",
		Context:      "ctx",
		Intent:       model.Intent{Kind: model.IntentContact},
		Continuity: Continuity{
			Question:        "yes",
			LastAssistant:   "Want me to send my resume?",
			EffectiveQuery:  "Do you have a resume?",
			FulfillingOffer: true,
		},
		Structured:  true,
		CaseStudies: []string{"Jucosa", "Atlas"},
	})
	require.Len(t, msgs, 6)
	require.Contains(t, msgs[2].Content, "contact")
	require.Contains(t, msgs[3].Content, `"""Want me to send my resume?"""`)
	require.Contains(t, msgs[4].Content, `"referenced"`)
	require.Contains(t, msgs[4].Content, "Jucosa, Atlas")
	last := msgs[len(msgs)-1]
	require.Equal(t, model.RoleUser, last.Role)
	require.Equal(t, "yes", last.Content)
}

func TestBuildPromptDefinitionHint(t *testing.T) {
	msgs := BuildPrompt(PromptInput{
		Intent:     model.Intent{Kind: model.IntentDefinition, Entity: "jucosa"},
		Continuity: Continuity{Question: "What is Jucosa?"},
	})
	require.Len(t, msgs, 4)
	require.Contains(t, msgs[2].Content, `"jucosa"`)
}

func TestBuildPromptContactBlockForcesContactHint(t *testing.T) {
	msgs := BuildPrompt(PromptInput{
		Context:    ContactContext("Email: me@example.com"),
		Intent:     model.Intent{Kind: model.IntentDefinition, Entity: "your email"},
		Contact:    true,
		Continuity: Continuity{Question: "What is your email?"},
	})
	require.Len(t, msgs, 4)
	require.Contains(t, msgs[2].Content, "You MUST give the exact information")
	require.NotContains(t, msgs[2].Content, "wants to know what")
}

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *StructuredAnswer
	}{
		{
			name: "plain",
			raw:  `{"answer":"Hi","referenced":["Jucosa"]}`,
			want: &StructuredAnswer{Answer: "Hi", Referenced: []string{"Jucosa"}},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"answer\":\"Hi\"}\n```",
			want: &StructuredAnswer{Answer: "Hi"},
		},
		{
			name: "surrounding text",
			raw:  "Sure! {\"answer\":\"Hi\",\"referenced\":[]} hope that helps",
			want: &StructuredAnswer{Answer: "Hi", Referenced: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStructured(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseStructuredMalformed(t *testing.T) {
	for _, raw := range []string{"", "just text", `{"answer": }`, `{"answer":"  "}`, `{"answer": 3}`} {
		_, err := ParseStructured(raw)
		require.ErrorIs(t, err, appErr.ErrMalformed, raw)
	}
}

func TestSanitizeReply(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "See [Jucosa](https://www.jucosa.io/) for more.", want: "See Jucosa for more."},
		{in: "Visit https://livelive.love/ today", want: "Visit today"},
		{in: "First paragraph.  \n\nSecond\t\tone.", want: "First paragraph.\n\nSecond one."},
		{in: "See [my talk](https://example.com/talk_(2024)) for more.", want: "See my talk for more."},
		{in: "Code at <https://github.com/justaurelia> today.", want: "Code at today."},
		{in: "Read [**the story**](https://x.io/a \"Title (1)\") now.", want: "Read **the story** now."},
		{in: "Logo ![logo](https://x.io/l.png) here.", want: "Logo here."},
		{in: "Write to aurelia.azarmi@gmail.com anytime.", want: "Write to aurelia.azarmi@gmail.com anytime."},
		{in: "Run `curl https://x.io` first.", want: "Run `curl https://x.io` first."},
		{in: "  ok  ", want: "ok"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeReply(tt.in), tt.in)
	}
}
