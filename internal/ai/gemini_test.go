package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
)

func TestToGeminiContents(t *testing.T) {
	contents, system := toGeminiContents([]model.Message{
		{Role: model.RoleSystem, Content: "a"},
		{Role: model.RoleSystem, Content: "b"},
		{Role: model.RoleAssistant, Content: "prev"},
		{Role: model.RoleUser, Content: "q"},
	})
	require.Equal(t, "a\n\nb", system)
	require.Len(t, contents, 2)
	require.Equal(t, "model", contents[0].Role)
	require.Equal(t, "prev", contents[0].Parts[0].Text)
	require.Equal(t, "user", contents[1].Role)
	require.Equal(t, "q", contents[1].Parts[0].Text)
}

func TestToGeminiContentsNoSystem(t *testing.T) {
	contents, system := toGeminiContents([]model.Message{{Role: model.RoleUser, Content: "hi"}})
	require.Empty(t, system)
	require.Len(t, contents, 1)
	require.Equal(t, "user", contents[0].Role)
}
