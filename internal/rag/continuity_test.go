package rag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
)

func testTimeline() ShortTimeline {
	return ShortTimeline{
		OfferPhrase: "want the short timeline?",
		Reply:       "Here's the short version...",
		Pill:        model.Pill{Label: "My journey", URL: "/about", Category: model.PillTimeline},
	}
}

func user(s string) model.Message      { return model.Message{Role: model.RoleUser, Content: s} }
func assistant(s string) model.Message { return model.Message{Role: model.RoleAssistant, Content: s} }

func TestIsAffirmative(t *testing.T) {
	yes := []string{"yes", "Yes", " YES! ", "sure.", "ok", "Okay!!", "yes please", "Yes, please", "let’s go", "of course", "go on..."}
	for _, s := range yes {
		require.True(t, IsAffirmative(s), s)
	}
	no := []string{"", "  ", "yes, but...", "yes but why", "no", "not sure", "yesterday", "ok so what about jucosa"}
	for _, s := range no {
		require.False(t, IsAffirmative(s), s)
	}
}

func TestResolveContinuityShortcut(t *testing.T) {
	msgs := []model.Message{
		user("How did you get into design?"),
		assistant("Long story, started with print. Want the short timeline?"),
		user("yes please"),
	}
	got := ResolveContinuity(msgs, testTimeline())
	require.NotNil(t, got.Shortcut)
	require.Equal(t, "Here's the short version...", got.Shortcut.Reply)
	require.Equal(t, "/about", got.Shortcut.Pill.URL)
}

func TestResolveContinuityShortcutRejectsQualifiedYes(t *testing.T) {
	msgs := []model.Message{
		assistant("Want the short timeline?"),
		user("yes, but..."),
	}
	got := ResolveContinuity(msgs, testTimeline())
	require.Nil(t, got.Shortcut)
	require.False(t, got.FulfillingOffer)
	require.Equal(t, "yes, but...", got.EffectiveQuery)
}

func TestResolveContinuityOfferFulfilment(t *testing.T) {
	msgs := []model.Message{
		user("Tell me about your bakery app"),
		assistant("It helps bakeries plan production. Would you like the demo?"),
		user("sure"),
	}
	got := ResolveContinuity(msgs, testTimeline())
	require.Nil(t, got.Shortcut)
	require.True(t, got.FulfillingOffer)
	require.Equal(t, "sure", got.Question)
	require.Equal(t, "Tell me about your bakery app", got.EffectiveQuery)
	require.Equal(t, "It helps bakeries plan production. Would you like the demo?", got.LastAssistant)
}

func TestResolveContinuityNoOffer(t *testing.T) {
	tests := []struct {
		name  string
		msgs  []model.Message
		query string
		offer bool
	}{
		{name: "plain question", msgs: []model.Message{user("What is Jucosa?")}, query: "What is Jucosa?"},
		{name: "yes without offer", msgs: []model.Message{user("hi"), assistant("Hello there."), user("yes")}, query: "yes"},
		{name: "offer without previous question", msgs: []model.Message{assistant("Shall I share the deck?"), user("ok")}, query: "ok", offer: true},
		{name: "empty history", msgs: nil, query: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveContinuity(tt.msgs, testTimeline())
			require.Nil(t, got.Shortcut)
			require.Equal(t, tt.offer, got.FulfillingOffer)
			require.Equal(t, tt.query, got.EffectiveQuery)
		})
	}
}

func TestResolveContinuityEmptyOfferPhrase(t *testing.T) {
	msgs := []model.Message{assistant("Want the short timeline?"), user("yes")}
	got := ResolveContinuity(msgs, ShortTimeline{})
	require.Nil(t, got.Shortcut)
	require.True(t, got.FulfillingOffer)
}
