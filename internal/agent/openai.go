package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"clinical-intake/internal/interview"
)

const systemPrompt = "You are a clinical intake assistant conducting a patient interview. " +
	"Given the chief complaint and the conversation so far, produce the next one or two short follow-up questions, " +
	"one per line, plain text, no numbering. Never repeat a question that was already asked. " +
	"When the interview has covered complaint details, duration, severity, triggers, medications and relevant history, " +
	"reply with exactly DONE."

// OpenAIStrategy is the model-backed question source. It satisfies the same
// contract as the template strategy; which one runs is a wiring decision.
type OpenAIStrategy struct {
	client   *openai.Client
	model    string
	maxTurns int
}

func NewOpenAIStrategy(apiKey, model string, maxTurns int) *OpenAIStrategy {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTurns <= 0 {
		maxTurns = interview.DefaultMaxTurns
	}
	return &OpenAIStrategy{
		client:   openai.NewClient(apiKey),
		model:    model,
		maxTurns: maxTurns,
	}
}

func (s *OpenAIStrategy) NextQuestions(ctx context.Context, chiefComplaint, extra string, turns []interview.Turn) ([]string, error) {
	// The turn cap is enforced here, not left to the model.
	if len(turns) >= s.maxTurns {
		return nil, nil
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}

	var intro strings.Builder
	if chiefComplaint != "" {
		fmt.Fprintf(&intro, "Chief complaint: %s\n", chiefComplaint)
	}
	if extra != "" {
		fmt.Fprintf(&intro, "Context: %s\n", extra)
	}
	if intro.Len() > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser, Content: intro.String(),
		})
	}

	for _, t := range turns {
		if len(t.Questions) > 0 {
			messages = append(messages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant, Content: strings.Join(t.Questions, "\n"),
			})
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser, Content: t.Answer,
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("openai question generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai question generation: empty response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" || strings.EqualFold(content, "DONE") {
		return nil, nil
	}

	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "DONE") {
			continue
		}
		questions = append(questions, line)
	}
	return questions, nil
}
