package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/aakankshagupta18/klean-backend/internal/domain/ai"
	"github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
)

type mockClient struct {
	reply string
	err   error
	last  domai.Request
}

func (m *mockClient) Generate(_ context.Context, req domai.Request) (string, error) {
	m.last = req
	return m.reply, m.err
}

var models = map[string]string{
	"default":   "llama3",
	"gemma":     "gemma2:9b",
	"tinygemma": "gemma2:2b",
	"qwen":      "qwen3:8b",
}

func TestAskRoutesVariantToModel(t *testing.T) {
	tests := []struct {
		variant string
		model   string
	}{
		{"", "llama3"},
		{"default", "llama3"},
		{"gemma", "gemma2:9b"},
		{"tinygemma", "gemma2:2b"},
		{"qwen", "qwen3:8b"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			client := &mockClient{reply: "answer"}
			svc := NewService(client, models)

			out, err := svc.Ask(context.Background(), tt.variant, "is retinol safe?")
			require.NoError(t, err)
			assert.Equal(t, "answer", out)
			assert.Equal(t, tt.model, client.last.Model)
			assert.Equal(t, "is retinol safe?", client.last.Prompt)
			assert.Empty(t, client.last.System)
		})
	}
}

func TestAskValidation(t *testing.T) {
	svc := NewService(&mockClient{}, models)

	_, err := svc.Ask(context.Background(), "", "   ")
	assert.ErrorIs(t, err, ingredients.ErrInvalidInput)

	_, err = svc.Ask(context.Background(), "mistral", "hi")
	assert.ErrorIs(t, err, ingredients.ErrUnknownVariant)
}

func TestAskPropagatesUpstreamError(t *testing.T) {
	svc := NewService(&mockClient{err: domai.ErrServiceUnavailable}, models)
	_, err := svc.Ask(context.Background(), "", "hi")
	assert.True(t, errors.Is(err, domai.ErrServiceUnavailable))
}

func TestAssess(t *testing.T) {
	client := &mockClient{reply: "```json\n{\"name\":\"Oxybenzone\",\"is_safe\":false,\"percentageifany\":\"6%\",\"description\":\"UV filter.\",\"cases_where_harmful\":[\"pregnancy\"]}\n```"}
	svc := NewService(client, models)

	rec, err := svc.Assess(context.Background(), "qwen", " oxybenzone ")
	require.NoError(t, err)

	assert.True(t, client.last.JSON)
	assert.NotEmpty(t, client.last.System)
	assert.Contains(t, client.last.Prompt, "oxybenzone")
	assert.Equal(t, "qwen3:8b", client.last.Model)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Oxybenzone", rec.Name)
	assert.False(t, rec.IsSafe)
	require.NotNil(t, rec.PercentageIfAny)
	assert.Equal(t, "6%", *rec.PercentageIfAny)
	assert.Equal(t, []string{"pregnancy"}, rec.CasesWhereHarmful)
}

func TestAssessUndecodableReply(t *testing.T) {
	svc := NewService(&mockClient{reply: "I cannot help with that."}, models)
	_, err := svc.Assess(context.Background(), "", "water")
	assert.ErrorIs(t, err, domai.ErrServiceUnavailable)

	_, err = svc.Assess(context.Background(), "", "")
	assert.ErrorIs(t, err, ingredients.ErrInvalidInput)
}
