package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adaptive-quiz-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempt() domain.QuizAttempt {
	q := domain.Question{Prompt: "What is 2 + 2?", Options: [4]string{"3", "4", "5", "22"}, Answer: "B"}
	return domain.QuizAttempt{
		ID:    "attempt-1",
		Score: 20,
		GradedQuestions: []domain.GradedQuestion{
			{Question: q, LearnerLabel: "B", CorrectLabel: "B", IsCorrect: true, Explanation: "Addition."},
			{Question: q, LearnerLabel: "B", CorrectLabel: "B", IsCorrect: true, Explanation: "Again."},
			{Question: q, LearnerLabel: "A", CorrectLabel: "B", Explanation: "Still addition."},
		},
		MaxScore: 30,
	}
}

func TestResultDocumentLayout(t *testing.T) {
	doc := ResultDocument(sampleAttempt())

	require.Len(t, doc.Lines, 4)
	assert.Equal(t, ResultFile, doc.Name)
	assert.Equal(t, "Your score: 20/30", doc.Lines[0])
	assert.Equal(t,
		"Question: What is 2 + 2?\nOptions:\n(A) 3\n(B) 4\n(C) 5\n(D) 22\nYour Answer: A\nCorrect Answer: B\nAdditional Info: Still addition.",
		doc.Lines[3])
}

func TestStudyDocumentPlaceholders(t *testing.T) {
	noTopic := StudyDocument("", nil)
	assert.Equal(t, []string{NoTopicLine}, noTopic.Lines)

	nothing := StudyDocument("Algebra", nil)
	assert.Equal(t, []string{NoMaterialLine}, nothing.Lines)
	assert.NotEqual(t, noTopic.Lines, nothing.Lines)
}

func TestStudyDocumentEntries(t *testing.T) {
	doc := StudyDocument("Algebra", []domain.StudyMaterial{
		{Title: "Linear Equations", Link: "https://example.org/le", Snippet: "Solving for x"},
		{Title: "Groups"},
	})
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "Title: Linear Equations\n\nLink:\n https://example.org/le\n\nSnippet:\nSolving for x", doc.Lines[0])
	assert.Contains(t, doc.Lines[1], "No link")
	assert.Contains(t, doc.Lines[1], "No snippet")
}

func TestSanitizeReplacesUnsupportedRunes(t *testing.T) {
	in := []string{"café €5", "π ≈ 3.14", "plain\nline"}
	for _, line := range in {
		out := Sanitize(line)
		assert.Equal(t, len([]rune(line)), len([]rune(out)))
		assert.Equal(t, strings.Count(line, "\n"), strings.Count(out, "\n"))
	}
	assert.Equal(t, "café €5", Sanitize("café €5"))
	assert.Equal(t, "? ? 3.14", Sanitize("π ≈ 3.14"))
}

func TestEncodeCP1252SanitizesBeforeEncoding(t *testing.T) {
	out, err := encodeCP1252("ok✓")
	require.NoError(t, err)
	assert.Equal(t, "ok?", out)

	out, err = encodeCP1252("café €5")
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9 \x805", out)

	out, err = encodeCP1252("π ≈ 3.14\nnext")
	require.NoError(t, err)
	assert.Equal(t, "? ? 3.14\nnext", out)
}

func TestRenderPDF(t *testing.T) {
	doc := ResultDocument(sampleAttempt())
	doc.Lines = append(doc.Lines, "Unicode → arrows and 日本語")

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(doc, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFileStoreSaveAndResolve(t *testing.T) {
	store := NewFileStore(t.TempDir())
	artifact, err := Render(StudyDocument("", nil))
	require.NoError(t, err)

	saved, err := store.Save("attempt-1", []Artifact{artifact})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, StudyFile, filepath.Base(saved[0].Path))

	data, err := os.ReadFile(saved[0].Path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, data)

	path, err := store.Path("attempt-1", StudyFile)
	require.NoError(t, err)
	assert.Equal(t, saved[0].Path, path)

	_, err = store.Path("..", StudyFile)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Path("attempt-1", "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Save("../escape", []Artifact{artifact})
	assert.Error(t, err)
}
