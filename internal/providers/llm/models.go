package llm

import "strings"

// Model identifiers on the completion gateway.
const (
	LiteModel     = "meta-llama/llama-3.3-8b-instruct:free"
	BalancedModel = "mistralai/mistral-7b-instruct-v0.2:free"
	HeavyModel    = "qwen/qwen2-72b-instruct"

	// ChatModel is what the relay currently pins for every turn.
	ChatModel  = LiteModel
	TitleModel = LiteModel
)

// selectionRule maps a prompt shape onto a model. Rules are evaluated in
// order; the first match wins and the zero rule at the end always matches.
type selectionRule struct {
	maxLen   int // match when prompt is shorter than this (0 = ignore)
	minLen   int // match when prompt is longer than this (0 = ignore)
	keywords []string
	model    string
}

var selectionRules = []selectionRule{
	{
		maxLen:   20,
		keywords: []string{"hi", "hello", "hey", "thanks", "thank you", "bye", "goodbye"},
		model:    LiteModel,
	},
	{
		minLen:   100,
		keywords: []string{"how to", "what is", "explain"},
		model:    HeavyModel,
	},
	{model: BalancedModel},
}

func (r selectionRule) matches(prompt string) bool {
	if r.maxLen == 0 && r.minLen == 0 && len(r.keywords) == 0 {
		return true
	}
	if r.maxLen > 0 && len(prompt) < r.maxLen {
		return true
	}
	if r.minLen > 0 && len(prompt) > r.minLen {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(prompt, kw) {
			return true
		}
	}
	return false
}

// SelectModel picks a model for a prompt: lite for short chit-chat, heavy
// for long or explanatory prompts, balanced otherwise.
func SelectModel(prompt string) string {
	p := strings.ToLower(strings.TrimSpace(prompt))
	for _, r := range selectionRules {
		if r.matches(p) {
			return r.model
		}
	}
	return BalancedModel
}
