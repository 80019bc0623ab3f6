package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/aakankshagupta18/klean-backend/internal/domain/ai"
	"github.com/aakankshagupta18/klean-backend/internal/domain/ingredients"
	"github.com/aakankshagupta18/klean-backend/internal/infra/ai/prompt"
)

// DefaultVariant is the model used by routes without a suffix.
const DefaultVariant = "default"

type Service struct {
	client ai.Client
	models map[string]string
}

// NewService maps variant names to model identifiers on one client.
func NewService(client ai.Client, models map[string]string) *Service {
	return &Service{client: client, models: models}
}

// Variants lists configured variant names in sorted order.
func (s *Service) Variants() []string {
	out := make([]string, 0, len(s.models))
	for v := range s.models {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Model resolves a variant to its model identifier.
func (s *Service) Model(variant string) (string, error) {
	if variant == "" {
		variant = DefaultVariant
	}
	m, ok := s.models[variant]
	if !ok {
		return "", fmt.Errorf("%q: %w", variant, ingredients.ErrUnknownVariant)
	}
	return m, nil
}

// Ask forwards a free-text question to the variant's model.
func (s *Service) Ask(ctx context.Context, variant, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is required: %w", ingredients.ErrInvalidInput)
	}
	model, err := s.Model(variant)
	if err != nil {
		return "", err
	}
	return s.client.Generate(ctx, ai.Request{Model: model, Prompt: question})
}

// Assess asks the variant's model for a safety record of one ingredient.
// The record is returned with a fresh id and is not persisted.
func (s *Service) Assess(ctx context.Context, variant, name string) (*ingredients.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ingredients.ErrInvalidInput)
	}
	model, err := s.Model(variant)
	if err != nil {
		return nil, err
	}

	out, err := s.client.Generate(ctx, ai.Request{
		Model:  model,
		System: prompt.GetSystemPrompt(),
		Prompt: prompt.GetUserPrompt(name),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	var a prompt.Assessment
	if err := json.Unmarshal([]byte(prompt.ExtractJSON(out)), &a); err != nil {
		return nil, fmt.Errorf("decode model output: %w: %w", ai.ErrServiceUnavailable, err)
	}
	rec := a.Ingredient(name)
	rec.ID = uuid.New().String()
	return &rec, nil
}
