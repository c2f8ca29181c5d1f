package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

// Driver names a supported SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"

	defaultSQLiteDSN   = "file:./data/quiz.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	defaultPostgresDSN = "postgres://localhost:5432/quiz?sslmode=disable"
)

// sqlStore implements Store on database/sql. Queries use $n placeholders, which both
// drivers accept.
type sqlStore struct {
	db     *sql.DB
	driver Driver
}

// openSQL opens the database, pings it and ensures the schema exists.
func openSQL(ctx context.Context, driver Driver, dsn string) (Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			if err := os.MkdirAll("data", 0o755); err != nil {
				return nil, fmt.Errorf("create storage directory: %w", err)
			}
			dsn = defaultSQLiteDSN
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// single writer; also keeps per-connection pragmas in force
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return newSQLStore(db, driver), nil
}

func newSQLStore(db *sql.DB, driver Driver) *sqlStore {
	return &sqlStore{db: db, driver: driver}
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaPostgres
	if driver == DriverSQLite {
		schema = schemaSQLite
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schemaSQLite = []string{
	`PRAGMA foreign_keys=ON`,
	`CREATE TABLE IF NOT EXISTS quizzes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  url TEXT NOT NULL,
  title TEXT NOT NULL,
  summary TEXT NOT NULL,
  key_entities TEXT NOT NULL,
  related_topics TEXT NOT NULL,
  created_at INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  quiz_id INTEGER NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  options TEXT NOT NULL,
  answer TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  explanation TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz_id ON questions(quiz_id)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
  id BIGSERIAL PRIMARY KEY,
  url TEXT NOT NULL,
  title TEXT NOT NULL,
  summary TEXT NOT NULL,
  key_entities TEXT NOT NULL,
  related_topics TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  quiz_id BIGINT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  options TEXT NOT NULL,
  answer TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  explanation TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz_id ON questions(quiz_id)`,
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) CreateQuiz(ctx context.Context, rec domain.QuizRecord) (int64, error) {
	rec = normalizeRecord(rec)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	entities, err := json.Marshal(rec.Entities)
	if err != nil {
		return 0, fmt.Errorf("encode entities: %w", err)
	}
	topics, err := json.Marshal(rec.RelatedTopics)
	if err != nil {
		return 0, fmt.Errorf("encode related topics: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `INSERT INTO quizzes (url,title,summary,key_entities,related_topics,created_at)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		rec.Address, rec.Title, rec.Summary, string(entities), string(topics), rec.CreatedAt.UnixMilli(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quiz: %w", err)
	}
	return id, nil
}

func (s *sqlStore) AddQuestions(ctx context.Context, quizID int64, questions []domain.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range questions {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO questions (quiz_id,question_text,options,answer,difficulty,explanation)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				quizID, q.Question, string(opts), q.Answer, string(q.Difficulty), q.Explanation,
			); err != nil {
				return fmt.Errorf("insert question: %w", err)
			}
		}
		return nil
	})
}

const quizColumns = `id,url,title,summary,key_entities,related_topics,created_at`

func (s *sqlStore) ListQuizzes(ctx context.Context) ([]domain.StoredQuiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := []domain.StoredQuiz{}
	index := map[int64]int{}
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[quiz.ID] = len(out)
		out = append(out, quiz)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// release the connection before the next query; sqlite runs with a single one
	rows.Close()

	if len(out) == 0 {
		return out, nil
	}

	qrows, err := s.db.QueryContext(ctx, `SELECT quiz_id,question_text,options,answer,difficulty,explanation
		FROM questions ORDER BY quiz_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer qrows.Close()
	for qrows.Next() {
		quizID, q, err := scanQuestion(qrows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[quizID]; ok {
			out[i].Questions = append(out[i].Questions, q)
		}
	}
	return out, qrows.Err()
}

func (s *sqlStore) GetQuiz(ctx context.Context, id int64) (domain.StoredQuiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
	quiz, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredQuiz{}, ErrNotFound
		}
		return domain.StoredQuiz{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT quiz_id,question_text,options,answer,difficulty,explanation
		FROM questions WHERE quiz_id=$1 ORDER BY id`, id)
	if err != nil {
		return domain.StoredQuiz{}, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		_, q, err := scanQuestion(rows)
		if err != nil {
			return domain.StoredQuiz{}, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, rows.Err()
}

// DeleteQuiz removes question rows explicitly so the cascade holds even on connections
// opened without foreign key enforcement.
func (s *sqlStore) DeleteQuiz(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id=$1`, id); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
		if err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (s *sqlStore) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (domain.StoredQuiz, error) {
	var (
		quiz      domain.StoredQuiz
		entities  string
		topics    string
		createdAt int64
	)
	if err := row.Scan(&quiz.ID, &quiz.Address, &quiz.Title, &quiz.Summary, &entities, &topics, &createdAt); err != nil {
		return domain.StoredQuiz{}, err
	}
	if err := json.Unmarshal([]byte(entities), &quiz.Entities); err != nil {
		return domain.StoredQuiz{}, fmt.Errorf("decode entities: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &quiz.RelatedTopics); err != nil {
		return domain.StoredQuiz{}, fmt.Errorf("decode related topics: %w", err)
	}
	quiz.CreatedAt = time.UnixMilli(createdAt).UTC()
	quiz.QuizRecord = normalizeRecord(quiz.QuizRecord)
	quiz.Questions = []domain.QuizQuestion{}
	return quiz, nil
}

func scanQuestion(row scanner) (int64, domain.QuizQuestion, error) {
	var (
		quizID     int64
		q          domain.QuizQuestion
		options    string
		difficulty string
	)
	if err := row.Scan(&quizID, &q.Question, &options, &q.Answer, &difficulty, &q.Explanation); err != nil {
		return 0, domain.QuizQuestion{}, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return 0, domain.QuizQuestion{}, fmt.Errorf("decode options: %w", err)
	}
	q.Difficulty = domain.Difficulty(difficulty)
	return quizID, q, nil
}
