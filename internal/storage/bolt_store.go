package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	quizBucket     = "quizzes"
	questionBucket = "questions"
)

// boltStore implements a Store backed by BoltDB. Quiz ids come from the quizzes bucket
// sequence; each quiz owns a nested bucket of questions keyed by their own sequence.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{quizBucket, questionBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) CreateQuiz(ctx context.Context, rec domain.QuizRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rec = normalizeRecord(rec)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(quizBucket))
		if bucket == nil {
			return fmt.Errorf("quiz bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = int64(seq)
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode quiz: %w", err)
		}
		id = rec.ID
		return bucket.Put(idKey(rec.ID), raw)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (b *boltStore) AddQuestions(ctx context.Context, quizID int64, questions []domain.QuizQuestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(quizBucket)).Get(idKey(quizID)) == nil {
			return fmt.Errorf("%w: id %d", ErrNotFound, quizID)
		}
		parent := tx.Bucket([]byte(questionBucket))
		if parent == nil {
			return fmt.Errorf("question bucket missing")
		}
		bucket, err := parent.CreateBucketIfNotExists(idKey(quizID))
		if err != nil {
			return err
		}
		for _, q := range questions {
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			raw, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question: %w", err)
			}
			if err := bucket.Put(idKey(int64(seq)), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListQuizzes walks ids from highest to lowest, which is newest first.
func (b *boltStore) ListQuizzes(ctx context.Context) ([]domain.StoredQuiz, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []domain.StoredQuiz{}
	err := b.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(quizBucket)).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			quiz, err := decodeQuiz(tx, v)
			if err != nil {
				return err
			}
			out = append(out, quiz)
		}
		return nil
	})
	return out, err
}

func (b *boltStore) GetQuiz(ctx context.Context, id int64) (domain.StoredQuiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredQuiz{}, err
	}
	var quiz domain.StoredQuiz
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(quizBucket)).Get(idKey(id))
		if raw == nil {
			return ErrNotFound
		}
		var err error
		quiz, err = decodeQuiz(tx, raw)
		return err
	})
	return quiz, err
}

func (b *boltStore) DeleteQuiz(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		quizzes := tx.Bucket([]byte(quizBucket))
		key := idKey(id)
		if quizzes.Get(key) == nil {
			return ErrNotFound
		}
		if err := quizzes.Delete(key); err != nil {
			return err
		}
		questions := tx.Bucket([]byte(questionBucket))
		if questions.Bucket(key) != nil {
			return questions.DeleteBucket(key)
		}
		return nil
	})
}

func decodeQuiz(tx *bolt.Tx, raw []byte) (domain.StoredQuiz, error) {
	var rec domain.QuizRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.StoredQuiz{}, fmt.Errorf("decode quiz: %w", err)
	}
	quiz := domain.StoredQuiz{QuizRecord: rec, Questions: []domain.QuizQuestion{}}

	bucket := tx.Bucket([]byte(questionBucket)).Bucket(idKey(rec.ID))
	if bucket == nil {
		return quiz, nil
	}
	err := bucket.ForEach(func(_, v []byte) error {
		var q domain.QuizQuestion
		if err := json.Unmarshal(v, &q); err != nil {
			return fmt.Errorf("decode question: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
		return nil
	})
	return quiz, err
}

// idKey encodes ids big-endian so byte order matches numeric order.
func idKey(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}
