package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/kamaubrian/study_pal/utils"
	openai "github.com/sashabaranov/go-openai"
)

const generationTimeout = 45 * time.Second

var optionLetters = []string{"A", "B", "C", "D"}

// GeneratedQuestion is one candidate question produced by the generator,
// not yet persisted anywhere.
type GeneratedQuestion struct {
	Prompt        string `json:"prompt"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// QuestionGenerator wraps the text-generation provider. It is the only
// long-running call in the system: one hard timeout, one retry on transient
// network failure, and nothing is ever persisted from here.
type QuestionGenerator struct {
	client  chatCompleter
	timeout time.Duration
}

func NewQuestionGenerator(apiKey string) *QuestionGenerator {
	return &QuestionGenerator{
		client:  openai.NewClient(apiKey),
		timeout: generationTimeout,
	}
}

func (g *QuestionGenerator) Generate(ctx context.Context, subjectName, description, gradeLevel string, count int) ([]GeneratedQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log.Printf("Generating %d questions | subject: %s | grade: %s", count, subjectName, gradeLevel)

	resp, err := g.complete(ctx, subjectName, description, gradeLevel, count)
	if err != nil && isTransient(err) {
		log.Printf("Transient generation failure, retrying once: %v", err)
		resp, err = g.complete(ctx, subjectName, description, gradeLevel, count)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGenerationFailed, err)
	}

	questions, err := parseGeneration(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrGenerationFailed, err)
	}
	return questions, nil
}

func (g *QuestionGenerator) complete(ctx context.Context, subjectName, description, gradeLevel string, count int) (openai.ChatCompletionResponse, error) {
	prompt := fmt.Sprintf(
		"Generate exactly %d multiple choice questions about %s for a %s student. "+
			"Focus: %s. Each question needs exactly 4 options and a short explanation of the correct answer.",
		count, subjectName, gradeLevel, description,
	)

	return g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert tutor writing practice quizzes for school children. Generate high-quality multiple choice questions with exactly 4 options each.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "submit_questions",
					Description: "Submit generated quiz questions",
					Parameters: map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"questions": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"text": map[string]interface{}{
											"type":        "string",
											"description": "The question text",
										},
										"options": map[string]interface{}{
											"type": "array",
											"items": map[string]interface{}{
												"type": "string",
											},
											"description": "Array of 4 multiple choice options",
										},
										"correct_answer": map[string]interface{}{
											"type":        "integer",
											"description": "0-based index of the correct answer",
										},
										"explanation": map[string]interface{}{
											"type":        "string",
											"description": "Brief explanation of why the answer is correct",
										},
									},
									"required": []string{"text", "options", "correct_answer", "explanation"},
								},
							},
						},
						"required": []string{"questions"},
					},
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type: openai.ToolTypeFunction,
			Function: openai.ToolFunction{
				Name: "submit_questions",
			},
		},
	})
}

func parseGeneration(resp openai.ChatCompletionResponse) ([]GeneratedQuestion, error) {
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in provider response")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, errors.New("no tool calls in provider response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		Questions []struct {
			Text          string   `json:"text"`
			Options       []string `json:"options"`
			CorrectAnswer int      `json:"correct_answer"`
			Explanation   string   `json:"explanation"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("malformed tool arguments: %v", err)
	}

	questions := make([]GeneratedQuestion, 0, len(toolArgs.Questions))
	for i, q := range toolArgs.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %d has empty text", i)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
			return nil, fmt.Errorf("question %d has correct answer index %d out of range", i, q.CorrectAnswer)
		}
		questions = append(questions, GeneratedQuestion{
			Prompt:        q.Text,
			OptionA:       q.Options[0],
			OptionB:       q.Options[1],
			OptionC:       q.Options[2],
			OptionD:       q.Options[3],
			CorrectOption: optionLetters[q.CorrectAnswer],
			Explanation:   q.Explanation,
		})
	}
	return questions, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
