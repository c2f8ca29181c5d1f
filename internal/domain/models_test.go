package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewQuizQuestionValidates(t *testing.T) {
	cases := []struct {
		name    string
		options []string
		answer  string
		diff    Difficulty
	}{
		{"three options", []string{"a", "b", "c"}, "a", DifficultyEasy},
		{"duplicate option", []string{"a", "b", "b", "c"}, "a", DifficultyEasy},
		{"answer missing", []string{"a", "b", "c", "d"}, "e", DifficultyEasy},
		{"unknown difficulty", []string{"a", "b", "c", "d"}, "a", Difficulty("extreme")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuizQuestion("q?", tc.options, tc.answer, tc.diff, "")
			if !errors.Is(err, ErrInvalidQuestion) {
				t.Fatalf("expected ErrInvalidQuestion, got %v", err)
			}
		})
	}
}

func TestNewQuizQuestionCopiesOptions(t *testing.T) {
	opts := []string{"a", "b", "c", "d"}
	q, err := NewQuizQuestion("q?", opts, "c", DifficultyHard, "because")
	if err != nil {
		t.Fatalf("NewQuizQuestion: %v", err)
	}
	opts[0] = "mutated"
	if q.Options[0] != "a" {
		t.Fatalf("options alias caller slice: %v", q.Options)
	}
}

func TestGeneratedQuizJSONShape(t *testing.T) {
	payload := GeneratedQuiz{
		ID:      7,
		Address: "https://en.wikipedia.org/wiki/Go",
		Title:   "Go",
		QuizResult: QuizResult{
			Summary:       "s",
			Entities:      EmptyEntities(),
			Sections:      []string{},
			Questions:     []QuizQuestion{},
			RelatedTopics: []string{},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"id":7`, `"url":"https://en.wikipedia.org/wiki/Go"`, `"key_entities":{`, `"quiz":[]`, `"related_topics":[]`, `"sections":[]`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("payload %s missing %s", raw, key)
		}
	}
}
