package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
)

func sampleRecord(title string) domain.QuizRecord {
	return domain.QuizRecord{
		Address: "https://en.wikipedia.org/wiki/" + title,
		Title:   title,
		Summary: "Summary of " + title,
		Entities: domain.EntityBundle{
			People:        []string{"Alan Turing"},
			Organizations: []string{},
			Locations:     []string{"London"},
		},
		RelatedTopics: []string{},
	}
}

func sampleQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{
			Question:    "When did an important event related to this topic occur?",
			Options:     []string{"In 1966", "In 1986", "In 1946", "The date is not mentioned"},
			Answer:      "In 1966",
			Difficulty:  domain.DifficultyMedium,
			Explanation: "The year 1966 is mentioned in the article as significant.",
		},
		{
			Question:    "What information can you learn from this article?",
			Options:     []string{"Information about the topic described", "Information about unrelated topics", "Fictional stories", "Scientific theories not mentioned"},
			Answer:      "Information about the topic described",
			Difficulty:  domain.DifficultyEasy,
			Explanation: "The article provides information about its main topic.",
		},
	}
}

// exerciseStore runs the persistence contract shared by the durable backends.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	first := sampleRecord("Turing_Award")
	first.CreatedAt = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	firstID, err := s.CreateQuiz(ctx, first)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if err := s.AddQuestions(ctx, firstID, sampleQuestions()); err != nil {
		t.Fatalf("AddQuestions: %v", err)
	}

	second := sampleRecord("Alan_Turing")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	secondID, err := s.CreateQuiz(ctx, second)
	if err != nil {
		t.Fatalf("CreateQuiz second: %v", err)
	}
	if secondID <= firstID {
		t.Fatalf("ids must increase: %d then %d", firstID, secondID)
	}

	got, err := s.GetQuiz(ctx, firstID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	first.ID = firstID
	want := domain.StoredQuiz{QuizRecord: first, Questions: sampleQuestions()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GetQuiz mismatch (-want +got):\n%s", diff)
	}

	list, err := s.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 2 || list[0].ID != secondID || list[1].ID != firstID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if len(list[0].Questions) != 0 || len(list[1].Questions) != 2 {
		t.Fatalf("unexpected question counts %d/%d", len(list[0].Questions), len(list[1].Questions))
	}

	if err := s.DeleteQuiz(ctx, firstID); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if _, err := s.GetQuiz(ctx, firstID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteQuiz(ctx, firstID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	list, err = s.ListQuizzes(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one quiz left, got %d err=%v", len(list), err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore(context.Background(), "none", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	a, _ := store.CreateQuiz(ctx, sampleRecord("A"))
	b, _ := store.CreateQuiz(ctx, sampleRecord("B"))
	if a != 1 || b != 2 {
		t.Fatalf("expected sequential ids, got %d %d", a, b)
	}
	if err := store.AddQuestions(ctx, a, sampleQuestions()); err != nil {
		t.Fatalf("noop AddQuestions: %v", err)
	}
	if list, _ := store.ListQuizzes(ctx); len(list) != 0 {
		t.Fatalf("noop store should not retain quizzes")
	}
	if _, err := store.GetQuiz(ctx, a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore(context.Background(), "redis", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := NewStore(context.Background(), "bbolt", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
