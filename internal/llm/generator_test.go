package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeChatModel returns a canned response and records the messages it saw.
type fakeChatModel struct {
	response string
	err      error
	got      []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.response, nil), nil
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{response: "  Photosynthesis converts light into chemical energy.  "}
	g := NewGenerator(fake, 0)

	got, err := g.Summarize(context.Background(), "photosynthesis", []string{"chunk one", "chunk two"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Photosynthesis converts light into chemical energy." {
		t.Errorf("summary not trimmed: %q", got)
	}

	if len(fake.got) != 2 {
		t.Fatalf("got %d messages, want system + user", len(fake.got))
	}
	if fake.got[0].Role != schema.System {
		t.Errorf("first message role: got %s, want system", fake.got[0].Role)
	}
	user := fake.got[1].Content
	if !strings.Contains(user, "photosynthesis") {
		t.Error("user message does not mention the topic")
	}
	if !strings.Contains(user, "chunk one") || !strings.Contains(user, "chunk two") {
		t.Error("user message does not include the retrieved chunks")
	}
}

func TestSummarize_EmptyResponse(t *testing.T) {
	t.Parallel()

	g := NewGenerator(&fakeChatModel{response: "   "}, 0)

	_, err := g.Summarize(context.Background(), "topic", []string{"chunk"})
	if err == nil {
		t.Fatal("want error for empty model response, got nil")
	}
}

func TestSummarize_ModelFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("rate limited")
	g := NewGenerator(&fakeChatModel{err: cause}, 0)

	_, err := g.Summarize(context.Background(), "topic", []string{"chunk"})
	if !errors.Is(err, cause) {
		t.Errorf("want wrapped cause, got %v", err)
	}
}

func TestQuestions(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{response: `{"questions": ["What is X?", "What is Y?"]}`}
	g := NewGenerator(fake, 0)

	got, err := g.Questions(context.Background(), "algebra", []string{"chunk"}, QuestionsMultipleChoice)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(got) != 2 || got[0] != "What is X?" {
		t.Errorf("questions: got %v", got)
	}
	if !strings.Contains(fake.got[1].Content, "multiple-choice") {
		t.Error("user message does not carry the question style")
	}
}

func TestQuestions_StripsMarkdownFence(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{response: "```json\n{\"questions\": [\"Q1\"]}\n```"}
	g := NewGenerator(fake, 0)

	got, err := g.Questions(context.Background(), "topic", []string{"chunk"}, QuestionsFillInBlank)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(got) != 1 || got[0] != "Q1" {
		t.Errorf("questions: got %v", got)
	}
}

func TestQuestions_MalformedJSON(t *testing.T) {
	t.Parallel()

	g := NewGenerator(&fakeChatModel{response: "Sure! Here are your questions: 1..."}, 0)

	_, err := g.Questions(context.Background(), "topic", []string{"chunk"}, QuestionsMultipleChoice)
	if err == nil {
		t.Fatal("want error for non-JSON response, got nil")
	}
}

func TestQuestions_UnknownType(t *testing.T) {
	t.Parallel()

	g := NewGenerator(&fakeChatModel{response: `{"questions": ["Q"]}`}, 0)

	if _, err := g.Questions(context.Background(), "topic", []string{"chunk"}, "essay"); err == nil {
		t.Error("want error for unknown questions type, got nil")
	}
}

func TestParseQuestionsType(t *testing.T) {
	t.Parallel()

	if _, err := ParseQuestionsType("multiple-choice"); err != nil {
		t.Errorf("multiple-choice rejected: %v", err)
	}
	if _, err := ParseQuestionsType("fill-in-the-blank"); err != nil {
		t.Errorf("fill-in-the-blank rejected: %v", err)
	}
	if _, err := ParseQuestionsType("true-false"); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestBuildContext_BudgetDropsTrailingChunks(t *testing.T) {
	t.Parallel()

	// Budget of 25 tokens = 100 chars. Three 60-char chunks: only the first
	// fits once the separator is counted.
	g := NewGenerator(&fakeChatModel{}, 25)
	chunk := strings.Repeat("a", 60)

	got := g.buildContext([]string{chunk, chunk, chunk})

	if got != chunk {
		t.Errorf("context: got %d chars, want the first chunk only (%d chars)", len(got), len(chunk))
	}
}

func TestBuildContext_FirstChunkAlwaysIncluded(t *testing.T) {
	t.Parallel()

	// A single chunk larger than the budget is still included; an empty
	// context would be worse than a long one.
	g := NewGenerator(&fakeChatModel{}, 1)
	chunk := strings.Repeat("b", 500)

	if got := g.buildContext([]string{chunk}); got != chunk {
		t.Errorf("oversized first chunk dropped, got %d chars", len(got))
	}
}
