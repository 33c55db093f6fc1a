package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
	"adaptive-quiz-service/internal/report"
)

// API exposes the quiz use cases as JSON over HTTP.
type API struct {
	service *app.QuizService
	ws      *WSHandler
	log     *logger.Logger
}

func NewAPI(service *app.QuizService, log *logger.Logger) *API {
	return &API{
		service: service,
		ws:      NewWSHandler(service, log),
		log:     log.With("component", "http"),
	}
}

// Routes registers every endpoint on a new mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /quizzes", a.generateQuiz)
	mux.HandleFunc("POST /quizzes/{id}/submissions", a.submitQuiz)
	mux.HandleFunc("GET /leaderboard", a.leaderboard)
	mux.HandleFunc("GET /learners/{email}/history", a.history)
	mux.HandleFunc("GET /reports/{attemptID}/{file}", a.downloadReport)
	mux.HandleFunc("GET /ws/leaderboard", a.ws.ServeWS)
	return mux
}

type generateRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
	Level        string `json:"level"`
}

type questionView struct {
	Index   int               `json:"index"`
	Prompt  string            `json:"prompt"`
	Options map[string]string `json:"options"`
}

type quizView struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Level     string          `json:"level"`
	Strategy  domain.Strategy `json:"strategy"`
	Questions []questionView  `json:"questions"`
}

type submitRequest struct {
	Answers map[int]string `json:"answers"`
}

type gradedView struct {
	Question      string `json:"question"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

type reportLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type submitResponse struct {
	AttemptID     string                 `json:"attempt_id"`
	Score         int                    `json:"score"`
	MaxScore      int                    `json:"max_score"`
	Graded        []gradedView           `json:"graded"`
	StudyMaterial []domain.StudyMaterial `json:"study_material"`
	Reports       []reportLink           `json:"reports"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func toQuizView(q domain.Quiz) quizView {
	view := quizView{ID: q.ID, Topic: q.Topic, Level: q.Level, Strategy: q.Strategy}
	view.Questions = make([]questionView, 0, len(q.Questions))
	for i, question := range q.Questions {
		opts := make(map[string]string, len(domain.Labels))
		for j, label := range domain.Labels {
			opts[label] = question.Options[j]
		}
		view.Questions = append(view.Questions, questionView{Index: i, Prompt: question.Prompt, Options: opts})
	}
	return view
}

func (a *API) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, domain.ErrInvalidRequest)
		return
	}
	quiz, err := a.service.GenerateQuiz(r.Context(), app.GenerateRequest{
		Name:         req.Name,
		Email:        req.Email,
		Topic:        req.Topic,
		NumQuestions: req.NumQuestions,
		Level:        req.Level,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuizView(quiz))
}

func (a *API) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, domain.ErrInvalidRequest)
		return
	}
	res, err := a.service.SubmitQuiz(r.Context(), app.Submission{QuizID: r.PathValue("id"), Answers: req.Answers})
	if err != nil {
		a.writeError(w, err)
		return
	}

	resp := submitResponse{
		AttemptID:     res.Attempt.ID,
		Score:         res.Attempt.Score,
		MaxScore:      res.Attempt.MaxScore,
		Graded:        make([]gradedView, 0, len(res.Attempt.GradedQuestions)),
		StudyMaterial: res.StudyMaterial,
		Reports:       make([]reportLink, 0, len(res.Reports)),
	}
	if resp.StudyMaterial == nil {
		resp.StudyMaterial = []domain.StudyMaterial{}
	}
	for _, g := range res.Attempt.GradedQuestions {
		resp.Graded = append(resp.Graded, gradedView{
			Question:      g.Question.Prompt,
			YourAnswer:    g.LearnerLabel,
			CorrectAnswer: g.CorrectLabel,
			IsCorrect:     g.IsCorrect,
			Explanation:   g.Explanation,
		})
	}
	for _, rep := range res.Reports {
		if rep.Path == "" {
			continue
		}
		resp.Reports = append(resp.Reports, reportLink{Name: rep.Name, URL: "/reports/" + res.Attempt.ID + "/" + rep.Name})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := a.service.Leaderboard(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	entries, err := a.service.History(r.Context(), r.PathValue("email"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) downloadReport(w http.ResponseWriter, r *http.Request) {
	path, err := a.service.ReportPath(r.PathValue("attemptID"), r.PathValue("file"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: "report not found"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// statusFor maps domain errors to a status and a message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, domain.ErrQuizNotFound.Error()
	case errors.Is(err, report.ErrNotFound):
		return http.StatusNotFound, report.ErrNotFound.Error()
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, domain.ErrGenerationFailed.Error()
	case errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusBadGateway, domain.ErrEmptyQuiz.Error()
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, domain.ErrPersistence.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// publicMessage keeps the validation detail and drops the sentinel suffix.
func publicMessage(err error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+domain.ErrInvalidRequest.Error()); trimmed != "" {
		return trimmed
	}
	return msg
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
