package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain contains the quiz models shared by the pipeline, storage and transport.

// ScrapedArticle is the cleaned output of the scrape step.
type ScrapedArticle struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// EntityBundle groups the entity lists pulled out of an article.
type EntityBundle struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// EmptyEntities returns a bundle with non-nil, empty lists.
func EmptyEntities() EntityBundle {
	return EntityBundle{People: []string{}, Organizations: []string{}, Locations: []string{}}
}

// Difficulty labels a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known labels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// OptionCount is the number of options every question carries.
const OptionCount = 4

var ErrInvalidQuestion = errors.New("invalid quiz question")

// QuizQuestion is one multiple-choice question. Build it with NewQuizQuestion.
type QuizQuestion struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Answer      string     `json:"answer"`
	Difficulty  Difficulty `json:"difficulty"`
	Explanation string     `json:"explanation"`
}

// NewQuizQuestion validates and builds a question: exactly four distinct options,
// the answer present among them and a known difficulty.
func NewQuizQuestion(question string, options []string, answer string, difficulty Difficulty, explanation string) (QuizQuestion, error) {
	q := QuizQuestion{
		Question:    question,
		Options:     append([]string(nil), options...),
		Answer:      answer,
		Difficulty:  difficulty,
		Explanation: explanation,
	}
	if err := q.Validate(); err != nil {
		return QuizQuestion{}, err
	}
	return q, nil
}

// Validate checks the question invariants.
func (q QuizQuestion) Validate() error {
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: want %d options, got %d", ErrInvalidQuestion, OptionCount, len(q.Options))
	}
	seen := make(map[string]struct{}, len(q.Options))
	found := false
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidQuestion, opt)
		}
		seen[opt] = struct{}{}
		if opt == q.Answer {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: answer %q not among options", ErrInvalidQuestion, q.Answer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuestion, q.Difficulty)
	}
	return nil
}

// QuizResult is what synthesis produces for one article.
type QuizResult struct {
	Summary       string         `json:"summary"`
	Entities      EntityBundle   `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// QuizRecord is the persisted quiz row.
type QuizRecord struct {
	ID            int64        `json:"id"`
	Address       string       `json:"url"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Entities      EntityBundle `json:"key_entities"`
	RelatedTopics []string     `json:"related_topics"`
	CreatedAt     time.Time    `json:"created_at"`
}

// StoredQuiz is a persisted quiz expanded with its questions in insertion order.
type StoredQuiz struct {
	QuizRecord
	Questions []QuizQuestion `json:"quiz"`
}

// GeneratedQuiz is the pipeline's success payload: the result plus identity fields.
type GeneratedQuiz struct {
	ID      int64  `json:"id"`
	Address string `json:"url"`
	Title   string `json:"title"`
	QuizResult
}
