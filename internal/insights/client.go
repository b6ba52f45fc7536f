// internal/insights/client.go
// OpenAI chat client wrapper for trait summaries and goal tips

package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the slice of the OpenAI API the summarizer needs.
// *openai.Client satisfies it; tests inject a stub.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient returns a chat client, or nil when no API key is
// configured. A nil client makes the service fall back to canned
// summaries.
func NewOpenAIClient(apiKey string) ChatClient {
	if apiKey == "" {
		return nil
	}
	return openai.NewClient(apiKey)
}

const circleCoachPrompt = `You are a professional and insightful life coach providing a consultation. Your task is to analyze a set of scores and provide a brief, constructive, and empowering analysis. The scores range from 1 to 10, where higher is better.

The scores are based on anonymous feedback from people in the user's circle. Begin with an overall summary acknowledging that this is peer feedback, discuss the most prominent strengths as well-developed aspects of character, then identify the lowest scores as opportunities for growth with a supportive, forward-looking perspective.

Your tone should be professional, empathetic, and clear. Avoid overly clinical or casual language.

Respond with a JSON object containing exactly these keys: "summary" (a 2-3 sentence narrative), "strengths" (array of 1-2 short strings drawn from the highest scores), "opportunities" (array of 1-2 short strings drawn from the lowest scores).`

const ecoCoachPrompt = `You are an environmental coach providing a consultation. Your task is to analyze a set of self-assessed scores on ecological habits and provide a brief, constructive, and empowering analysis. The scores range from 1 to 10, where higher indicates more sustainable habits.

Begin with an overall summary acknowledging that this is a self-assessment of the user's environmental habits, highlight the areas where the user's habits are most sustainable, then frame the lowest scores as opportunities for a greener lifestyle. Avoid judgmental language.

Respond with a JSON object containing exactly these keys: "summary" (a 2-3 sentence narrative), "strengths" (array of 1-2 short strings), "opportunities" (array of 1-2 short strings).`

const goalTipPrompt = `You are a supportive family counselor. A user has set a shared family goal to work on the trait %q.

Generate one concise, actionable, and encouraging tip for how two family members can practice this together. The tip should be a single sentence.

Example for "Patience": "Try taking a deep breath and counting to five before responding during a disagreement."
Example for "Better Listening": "Practice active listening by summarizing what the other person said before sharing your own perspective."

Respond with a JSON object containing exactly one key: "tip".`

func summaryPrompt(contextName string, traits []Trait) (system, user string) {
	system = circleCoachPrompt
	if contextName == ecoContext {
		system = ecoCoachPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The scores are from the %q category.\n\nHere are the recent scores:\n", contextName)
	for _, t := range traits {
		fmt.Fprintf(&b, "- %s: %.1f\n", t.Name, t.AverageScore)
	}
	return system, b.String()
}

func completeJSON(ctx context.Context, chat ChatClient, model, system, user string, out interface{}) error {
	resp, err := chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("failed to parse completion: %w", err)
	}
	return nil
}

// heuristicSummary builds a deterministic consultation from the scores
// alone, used when no model is configured or the call fails.
func heuristicSummary(contextName string, traits []Trait) *Summary {
	sorted := make([]Trait, len(traits))
	copy(sorted, traits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AverageScore > sorted[j].AverageScore })

	strengths := []string{sorted[0].Name}
	opportunities := []string{sorted[len(sorted)-1].Name}
	if len(sorted) > 3 {
		strengths = append(strengths, sorted[1].Name)
		opportunities = append(opportunities, sorted[len(sorted)-2].Name)
	}

	var summary string
	if contextName == ecoContext {
		summary = fmt.Sprintf(
			"Your Eco Rating self-assessment shows your most sustainable habits in %s. %s stands out as the area with the most room to grow, and small consistent changes there can make a real difference.",
			strings.Join(strengths, " and "), sorted[len(sorted)-1].Name)
	} else {
		summary = fmt.Sprintf(
			"Feedback from your %s circle highlights %s as your strongest qualities. %s scored lowest and represents your biggest opportunity for growth.",
			contextName, strings.Join(strengths, " and "), sorted[len(sorted)-1].Name)
	}

	return &Summary{Summary: summary, Strengths: strengths, Opportunities: opportunities}
}

// goalTipFallbacks mirror the examples given to the model.
var goalTipFallbacks = map[string]string{
	"Patience":             "Try taking a deep breath and counting to five before responding during a disagreement.",
	"Better Listening":     "Practice active listening by summarizing what the other person said before sharing your own perspective.",
	"Being Present":        "Set aside ten minutes a day with phones away to give each other your full attention.",
	"Showing Appreciation": "Share one specific thing you appreciated about each other at the end of every day.",
}
