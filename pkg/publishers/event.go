package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
)

// EventTypeQuizGenerated is emitted once a quiz has been persisted.
const EventTypeQuizGenerated = "quiz.generated"

// Event represents the payload published downstream.
type Event struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	QuizID        int64          `json:"quiz_id"`
	Address       string         `json:"url"`
	Title         string         `json:"title"`
	QuestionCount int            `json:"question_count"`
	Difficulties  map[string]int `json:"difficulties"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// NewQuizEvent summarises a generated quiz as an Event.
func NewQuizEvent(q domain.GeneratedQuiz) Event {
	difficulties := make(map[string]int, 3)
	for _, question := range q.Questions {
		difficulties[string(question.Difficulty)]++
	}
	return Event{
		ID:            uuid.NewString(),
		Type:          EventTypeQuizGenerated,
		QuizID:        q.ID,
		Address:       q.Address,
		Title:         q.Title,
		QuestionCount: len(q.Questions),
		Difficulties:  difficulties,
		GeneratedAt:   time.Now().UTC(),
	}
}
