package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLiteStoreContract(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz.sqlite") + "?_pragma=foreign_keys(1)"
	store, err := NewStore(context.Background(), "sqlite", Options{DatabaseURL: dsn})
	if err != nil {
		t.Fatalf("NewStore sqlite: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLStoreWriteOrdering(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO quizzes`)).
		WithArgs("https://en.wikipedia.org/wiki/Turing_Award", "Turing_Award", sqlmock.AnyArg(), sqlmock.AnyArg(), "[]", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO questions`)).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), "In 1966", "medium", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO questions`)).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), "Information about the topic described", "easy", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	store := newSQLStore(db, DriverPostgres)
	ctx := context.Background()
	id, err := store.CreateQuiz(ctx, sampleRecord("Turing_Award"))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d", id)
	}
	if err := store.AddQuestions(ctx, id, sampleQuestions()); err != nil {
		t.Fatalf("AddQuestions: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStoreQuestionFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO questions`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := newSQLStore(db, DriverPostgres)
	if err := store.AddQuestions(context.Background(), 7, sampleQuestions()); err == nil {
		t.Fatalf("expected insert error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStoreGetMissingQuiz(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM quizzes WHERE id=$1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "summary", "key_entities", "related_topics", "created_at"}))

	store := newSQLStore(db, DriverPostgres)
	if _, err := store.GetQuiz(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLStoreDeleteMissingQuiz(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM questions`)).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quizzes`)).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := newSQLStore(db, DriverPostgres)
	if err := store.DeleteQuiz(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
