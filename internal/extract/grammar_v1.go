package extract

import (
	"regexp"
	"strings"

	"adaptive-quiz-service/internal/domain"
)

var (
	// Question <N>:, blank line, prompt, blank line, (A)..(D), blank line, Result: <letter>.
	// The marker may be wrapped in markdown bold.
	blockV1 = regexp.MustCompile(
		`(?:\*\*)?Question \d+:(?:\*\*)?[ \t]*\n\n(.+?)\n\n\(A\) (.+?)\n\(B\) (.+?)\n\(C\) (.+?)\n\(D\) (.+?)\n\nResult: (.+)`)
	markerV1 = regexp.MustCompile(`Question \d+:`)
)

// GrammarV1 is the first question-block grammar.
type GrammarV1 struct{}

func (GrammarV1) Version() string { return "v1" }

func (GrammarV1) Parse(text string) Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	res := Result{Blocks: len(markerV1.FindAllStringIndex(text, -1))}
	for _, m := range blockV1.FindAllStringSubmatch(text, -1) {
		q := domain.Question{
			Prompt: strings.TrimSpace(m[1]),
			Options: [4]string{
				strings.TrimSpace(m[2]),
				strings.TrimSpace(m[3]),
				strings.TrimSpace(m[4]),
				strings.TrimSpace(m[5]),
			},
			Answer: strings.TrimSpace(strings.Trim(m[6], "* ")),
		}
		if !validLabel(q.CorrectLabel()) {
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	return res
}

func validLabel(label string) bool {
	for _, l := range domain.Labels {
		if l == label {
			return true
		}
	}
	return false
}
