package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestBoltStoreContract(t *testing.T) {
	store, err := NewStore(context.Background(), "bbolt", Options{BBoltPath: filepath.Join(t.TempDir(), "nested", "quiz.db")})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestBoltStoreAddQuestionsRequiresQuiz(t *testing.T) {
	store, err := openBolt(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	if err := store.AddQuestions(context.Background(), 42, sampleQuestions()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.db")
	ctx := context.Background()

	store, err := openBolt(path)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	id, err := store.CreateQuiz(ctx, sampleRecord("Go"))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := openBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetQuiz(ctx, id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != "Go" || got.CreatedAt.IsZero() || len(got.Questions) != 0 {
		t.Fatalf("unexpected quiz %+v", got)
	}
}

func TestBoltStoreHonoursCancelledContext(t *testing.T) {
	store, err := openBolt(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.CreateQuiz(ctx, sampleRecord("Go")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
