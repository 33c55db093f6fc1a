package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/infra/sendgrid"
	"adaptive-quiz-service/internal/infra/sqlite"
	"adaptive-quiz-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	err := printLeaderboard(&out, []domain.LeaderboardEntry{
		{Name: "Bob", Score: 50, Topic: "Sets"},
		{Name: "Ada", Score: 30, Topic: "Algebra"},
		{Name: "Cy", Score: 10, Topic: "N/A"},
	}, 2)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RANK"))
	assert.Contains(t, lines[1], "Bob")
	assert.Contains(t, lines[2], "Ada")
}

func TestBuildStoresFallsBackToMemory(t *testing.T) {
	var cfg config.Config
	st, err := buildStores(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	assert.IsType(t, &memory.AttemptStore{}, st.attempts)
	assert.IsType(t, &memory.QuizRepository{}, st.quizzes)
	assert.IsType(t, &memory.LeaderboardCache{}, st.leaderboard)
}

func TestBuildStoresUsesSQLite(t *testing.T) {
	var cfg config.Config
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "attempts.db")
	st, err := buildStores(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	assert.IsType(t, &sqlite.AttemptStore{}, st.attempts)
}

func TestBuildDeliverer(t *testing.T) {
	d, err := buildDeliverer(config.Delivery{Provider: "log"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sendgrid.LogDeliverer{}, d)

	_, err = buildDeliverer(config.Delivery{Provider: "sendgrid"}, logger.Nop())
	assert.Error(t, err)

	_, err = buildDeliverer(config.Delivery{Provider: "pigeon"}, logger.Nop())
	assert.Error(t, err)
}

func TestBuildServiceWithMockProvider(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: mock\nreports:\n  dir: "+t.TempDir()+"\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	st, err := buildStores(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	service, err := buildService(context.Background(), cfg, st, logger.Nop())
	require.NoError(t, err)

	quiz, err := service.GenerateQuiz(context.Background(), app.GenerateRequest{
		Name: "Ada", Email: "ada@example.com", Topic: "Algebra", NumQuestions: 2, Level: "easy",
	})
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 2)
}

func TestLeaderboardCommandReadsSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "attempts.db")
	store, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	for i, score := range []int{30, 50, 10} {
		require.NoError(t, store.Insert(ctx, domain.AttemptRecord{ID: string(rune('a' + i)), Name: "learner", Score: score}))
	}
	require.NoError(t, store.Close())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"leaderboard", "--config", writeConfig(t, "sqlite:\n  path: "+dbPath+"\n")})
	require.NoError(t, cmd.ExecuteContext(ctx))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "50")
	assert.Contains(t, lines[2], "30")
	assert.Contains(t, lines[3], "10")
	assert.Contains(t, lines[3], "N/A")
}
