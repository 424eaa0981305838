package chatbot

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// MaxQuizzesPerLesson caps how many parsed quizzes a lesson keeps.
const MaxQuizzesPerLesson = 5

// QuizDraft is a quiz extracted from a completion, not yet persisted.
type QuizDraft struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

var (
	fenceRe     = regexp.MustCompile("```json|```")
	preambleRe  = regexp.MustCompile(`^.*?Here's.*?:\s*`)
	fallbackSet = []QuizDraft{
		{
			Question:      "Which of the following is NOT a characteristic of functional programming?",
			Options:       []string{"Immutable data", "Pure functions", "Side effects", "Higher-order functions"},
			CorrectAnswer: "Side effects",
		},
		{
			Question:      "What does a compiler do?",
			Options:       []string{"Translates source code into machine code", "Stores files on disk", "Renders web pages", "Manages network traffic"},
			CorrectAnswer: "Translates source code into machine code",
		},
		{
			Question:      "Which data structure follows first-in, first-out order?",
			Options:       []string{"Stack", "Queue", "Tree", "Hash map"},
			CorrectAnswer: "Queue",
		},
		{
			Question:      "What is the purpose of version control such as Git?",
			Options:       []string{"Tracking changes to code over time", "Speeding up program execution", "Encrypting network traffic", "Designing user interfaces"},
			CorrectAnswer: "Tracking changes to code over time",
		},
		{
			Question:      "Which of these is a loop construct found in most programming languages?",
			Options:       []string{"for", "class", "import", "return"},
			CorrectAnswer: "for",
		},
	}
)

// FallbackQuizzes returns a copy of the fixed question set used when a
// completion cannot be turned into quizzes.
func FallbackQuizzes() []QuizDraft {
	out := make([]QuizDraft, len(fallbackSet))
	for i, q := range fallbackSet {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

// ParseQuizzes extracts quizzes from raw completion text. It never fails: when
// nothing usable is found the fallback set is returned and parsed is false.
func ParseQuizzes(raw string) (drafts []QuizDraft, parsed bool) {
	value, ok := decodeQuizJSON(raw)
	if !ok {
		return FallbackQuizzes(), false
	}

	switch v := value.(type) {
	case []json.RawMessage:
		for _, item := range v {
			if q, ok := decodeDraft(item); ok {
				drafts = append(drafts, q)
			}
		}
	case json.RawMessage:
		if q, ok := decodeDraft(v); ok {
			drafts = append(drafts, q)
		}
	}

	if len(drafts) == 0 {
		return FallbackQuizzes(), false
	}
	if len(drafts) > MaxQuizzesPerLesson {
		drafts = drafts[:MaxQuizzesPerLesson]
	}
	return drafts, true
}

// decodeQuizJSON strips markdown fences and a conversational preamble, then
// decodes the remainder as either an array or a single object. Text that
// already starts with JSON keeps its content untouched.
func decodeQuizJSON(raw string) (interface{}, bool) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	}
	if !strings.HasPrefix(text, "[") && !strings.HasPrefix(text, "{") {
		text = strings.TrimSpace(preambleRe.ReplaceAllString(text, ""))
	}
	if text == "" {
		return nil, false
	}

	b := []byte(text)
	if !json.Valid(b) {
		return nil, false
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, false
		}
		return items, true
	case '{':
		return json.RawMessage(b), true
	default:
		return nil, false
	}
}

// decodeDraft accepts an object whose question and correctAnswer are strings
// and whose options are at least two distinct strings containing the answer.
func decodeDraft(item json.RawMessage) (QuizDraft, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return QuizDraft{}, false
	}

	var q QuizDraft
	if err := strictString(fields["question"], &q.Question); err != nil || strings.TrimSpace(q.Question) == "" {
		return QuizDraft{}, false
	}
	if err := strictString(fields["correctAnswer"], &q.CorrectAnswer); err != nil {
		return QuizDraft{}, false
	}
	if raw, ok := fields["options"]; !ok || json.Unmarshal(raw, &q.Options) != nil {
		return QuizDraft{}, false
	}

	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return QuizDraft{}, false
		}
		seen[o] = true
	}
	if len(q.Options) < 2 || !seen[q.CorrectAnswer] {
		return QuizDraft{}, false
	}
	return q, true
}

var errNotString = errors.New("not a JSON string")

func strictString(raw json.RawMessage, out *string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return errNotString
	}
	return json.Unmarshal(raw, out)
}
