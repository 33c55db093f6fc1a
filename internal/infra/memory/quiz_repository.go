package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"adaptive-quiz-service/internal/domain"
)

// QuizRepository keeps generated quizzes in process until they expire.
type QuizRepository struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

// NewQuizRepository keeps quizzes for ttl plus up to 10% jitter. A
// non-positive ttl keeps them forever.
func NewQuizRepository(ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked(now)

	entry := cachedQuiz{quiz: quiz}
	if ttl := r.ttlWithJitter(); ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	r.cache[quiz.ID] = entry
	return nil
}

func (r *QuizRepository) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || entry.expired(now) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return entry.quiz, nil
}

func (r *QuizRepository) purgeLocked(now time.Time) {
	for id, entry := range r.cache {
		if entry.expired(now) {
			delete(r.cache, id)
		}
	}
}

func (e cachedQuiz) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
