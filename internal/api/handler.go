package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/ai"
	"github.com/spigell/mock-interviewer/internal/history"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/resume"
)

// Interviewer is the session surface served by the handler.
type Interviewer interface {
	Start(ctx context.Context, profile ai.Profile) (*interview.Turn, error)
	Submit(ctx context.Context, question, answer string) (*interview.Turn, error)
	Evaluate(ctx context.Context) (*interview.Report, error)
	Reset()
}

type startRequest struct {
	ResumeText     string `mapstructure:"resume_text"`
	JobRole        string `mapstructure:"job_role"`
	JobDescription string `mapstructure:"job_description"`
	Experience     string `mapstructure:"experience"`
	Domain         string `mapstructure:"domain"`
}

type continueRequest struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

type saveEvaluationRequest struct {
	UserEmail  string             `mapstructure:"userEmail"`
	Evaluation history.Evaluation `mapstructure:"evaluation"`
}

// Handler routes the interview and history endpoints.
type Handler struct {
	interviews Interviewer
	history    history.Store
	logger     *zap.Logger
	now        func() time.Time
	// historyToken, when set, must be presented as a bearer token on history routes.
	historyToken string
}

func NewHandler(interviews Interviewer, store history.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		interviews: interviews,
		history:    store,
		logger:     logger,
		now:        time.Now,
	}
}

// RequireHistoryToken protects the evaluation history routes with a shared
// bearer token. An empty token leaves them open.
func (h *Handler) RequireHistoryToken(token string) {
	h.historyToken = strings.TrimSpace(token)
}

// Routes returns the complete HTTP handler including middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start_interview", h.startInterview)
	mux.HandleFunc("POST /continue_interview", h.continueInterview)
	mux.HandleFunc("POST /reset_interview", h.resetInterview)
	mux.HandleFunc("POST /evaluate_interview", h.evaluateInterview)
	mux.HandleFunc("POST /evaluationhistory/save-evaluation", h.withHistoryToken(h.saveEvaluation))
	mux.HandleFunc("GET /evaluationhistory/user-evaluations/{email}", h.withHistoryToken(h.userEvaluations))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	return withCORS(withRequestLog(h.logger, mux))
}

func (h *Handler) startInterview(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeRequest(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	resumeText, err := h.resumeText(r, req.ResumeText)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	turn, err := h.interviews.Start(r.Context(), ai.Profile{
		ResumeText:      resumeText,
		JobRole:         req.JobRole,
		JobDescription:  req.JobDescription,
		ExperienceLevel: req.Experience,
		Domain:          ai.Domain(req.Domain),
	})
	if err != nil {
		h.writeInterviewError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"question":             turn.Question,
		"question_number":      turn.Number,
		"interview_start_time": turn.StartTime.Format(time.RFC3339),
		"session_id":           turn.SessionID,
	})
}

// resumeText prefers an uploaded "resume" file over the resume_text field.
func (h *Handler) resumeText(r *http.Request, text string) (string, error) {
	if r.MultipartForm != nil {
		file, header, err := r.FormFile("resume")
		switch {
		case err == nil:
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return "", fmt.Errorf("read resume upload: %w", err)
			}
			return resume.FromUpload(header.Filename, data)
		case !errors.Is(err, http.ErrMissingFile):
			return "", fmt.Errorf("read resume upload: %w", err)
		}
	}
	return resume.Clean(text), nil
}

func (h *Handler) continueInterview(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if err := decodeRequest(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	turn, err := h.interviews.Submit(r.Context(), req.Question, req.Answer)
	if err != nil {
		h.writeInterviewError(w, r, err)
		return
	}

	if turn.Finished() {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Interview completed",
			"evaluation": turn.Report,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"question":         turn.Question,
		"question_number":  turn.Number,
		"current_duration": fmt.Sprintf("%.1f minutes", turn.Elapsed.Minutes()),
	})
}

func (h *Handler) resetInterview(w http.ResponseWriter, _ *http.Request) {
	h.interviews.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Interview state reset successfully",
		"status":  "success",
	})
}

func (h *Handler) evaluateInterview(w http.ResponseWriter, r *http.Request) {
	report, err := h.interviews.Evaluate(r.Context())
	if err != nil {
		h.writeInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"evaluation": report})
}

func (h *Handler) saveEvaluation(w http.ResponseWriter, r *http.Request) {
	var req saveEvaluationRequest
	if err := decodeRequest(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	rec, err := history.NewRecord(req.UserEmail, req.Evaluation, h.now())
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.history.Save(r.Context(), rec); err != nil {
		h.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("save evaluation: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Evaluation saved successfully",
		"evaluation": rec,
	})
}

func (h *Handler) userEvaluations(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if email == "" {
		h.writeError(w, r, http.StatusBadRequest, errors.New("email is required"))
		return
	}

	records, err := h.history.ListByUser(r.Context(), email)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("list evaluations: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}
