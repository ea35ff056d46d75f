// Package llm turns retrieved document chunks into study material: topic
// summaries and practice question sets. It drives a ChatModel constructed by
// the provider package and owns the prompt templates and response parsing.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// QuestionsType selects the style of generated practice questions.
type QuestionsType string

const (
	// QuestionsMultipleChoice generates four-option multiple-choice questions.
	QuestionsMultipleChoice QuestionsType = "multiple-choice"

	// QuestionsFillInBlank generates fill-in-the-blank questions.
	QuestionsFillInBlank QuestionsType = "fill-in-the-blank"
)

// ParseQuestionsType validates a client-supplied question type string.
func ParseQuestionsType(s string) (QuestionsType, error) {
	switch QuestionsType(s) {
	case QuestionsMultipleChoice, QuestionsFillInBlank:
		return QuestionsType(s), nil
	}
	return "", fmt.Errorf("llm: unknown questions type %q, valid values: %s, %s",
		s, QuestionsMultipleChoice, QuestionsFillInBlank)
}

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// context budgeting across backends with different tokenizers.
	charsPerToken = 4

	// DefaultMaxContextTokens is the input context budget in tokens.
	// Conservative enough to fit 8k-context models with room for the output.
	DefaultMaxContextTokens = 6000
)

// ChatModel is the narrow slice of the eino model interface the generator
// needs. model.BaseChatModel satisfies it; tests substitute a fake.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Generator produces summaries and question sets from retrieved chunks.
type Generator struct {
	model            ChatModel
	maxContextTokens int
}

// NewGenerator constructs a Generator over the given chat model. A
// maxContextTokens of zero falls back to DefaultMaxContextTokens.
func NewGenerator(m ChatModel, maxContextTokens int) *Generator {
	if maxContextTokens <= 0 {
		maxContextTokens = DefaultMaxContextTokens
	}
	return &Generator{
		model:            m,
		maxContextTokens: maxContextTokens,
	}
}

// Summarize generates a prose summary of the topic from the given chunks.
func (g *Generator) Summarize(ctx context.Context, topic string, chunks []string) (string, error) {
	contextText := g.buildContext(chunks)

	resp, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(summarySystem),
		schema.UserMessage(fmt.Sprintf(summaryUser, topic, contextText)),
	})
	if err != nil {
		return "", fmt.Errorf("llm: summary generation failed: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("llm: model returned an empty summary")
	}
	return summary, nil
}

// questionsResponse is the JSON shape the model is instructed to return.
type questionsResponse struct {
	Questions []string `json:"questions"`
}

// Questions generates practice questions of the given type about the topic
// from the given chunks.
func (g *Generator) Questions(ctx context.Context, topic string, chunks []string, qt QuestionsType) ([]string, error) {
	style, ok := styleInstructions[qt]
	if !ok {
		return nil, fmt.Errorf("llm: unknown questions type %q", qt)
	}

	contextText := g.buildContext(chunks)

	resp, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(questionsSystem),
		schema.UserMessage(fmt.Sprintf(questionsUser, style, topic, contextText)),
	})
	if err != nil {
		return nil, fmt.Errorf("llm: question generation failed: %w", err)
	}

	var parsed questionsResponse
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("llm: model response is not valid question JSON: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("llm: model returned no questions")
	}
	return parsed.Questions, nil
}

// buildContext joins chunks into one context block, dropping trailing chunks
// once the token budget is exhausted. Chunks arrive in descending relevance
// order, so the least relevant are dropped first.
func (g *Generator) buildContext(chunks []string) string {
	budget := g.maxContextTokens * charsPerToken

	var sb strings.Builder
	for _, chunk := range chunks {
		if sb.Len() > 0 && sb.Len()+len(chunk)+2 > budget {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(chunk)
	}
	return sb.String()
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
