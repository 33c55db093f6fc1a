package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"adaptive-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizBackend is a durable quiz store behind the cache (e.g. Postgres).
type QuizBackend interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches generated quizzes in Redis as JSON under
// quiz:{quizID}. With a backend, writes go through to it and cache misses
// fall back to it.
type QuizRepository struct {
	client  *redis.Client
	backend QuizBackend
	ttl     time.Duration
	sf      singleflight.Group
}

// NewQuizRepository builds the cache. backend may be nil, in which case a
// quiz is gone once its key expires.
func NewQuizRepository(client *redis.Client, backend QuizBackend, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client:  client,
		backend: backend,
		ttl:     ttl,
	}
}

func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if r.backend != nil {
		if err := r.backend.SaveQuiz(ctx, quiz); err != nil {
			return err
		}
	}
	return r.cache(ctx, quiz)
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := r.cached(ctx, quizID)
	if err == nil {
		return quiz, nil
	}
	if !errors.Is(err, redis.Nil) {
		return domain.Quiz{}, err
	}
	if r.backend == nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, err := r.cached(ctx, quizID); err == nil {
			return quiz, nil
		}

		quiz, err := r.backend.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		_ = r.cache(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, error) {
	raw, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		// unreadable entries behave like a miss
		return domain.Quiz{}, redis.Nil
	}
	return quiz, nil
}

func (r *QuizRepository) cache(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	if err := r.client.Set(ctx, r.key(quiz.ID), raw, r.ttlWithJitter()).Err(); err != nil {
		return fmt.Errorf("cache quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) key(quizID string) string {
	return "quiz:" + quizID
}

// ttlWithJitter uses the package-level source, which is safe for the
// concurrent SaveQuiz and GetQuiz calls.
func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
