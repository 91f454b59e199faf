package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/auth"
	"inno-quiz-service/internal/domain"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Catalog  *app.QuizCatalog
	Bank     *app.QuestionBank
	Importer *app.TriviaImporter
	Engine   *app.ScoringEngine
	Accounts *app.AccountService
}

type APIHandler struct {
	svc      Services
	identity *Identity
	tokens   *auth.Tokens
	validate *validator.Validate
	log      *slog.Logger
}

// NewAPIHandler builds the JSON API. tokens may be nil, in which case login is
// disabled and identities come from the X-Username header.
func NewAPIHandler(svc Services, tokens *auth.Tokens, log *slog.Logger) *APIHandler {
	if log == nil {
		log = slog.Default()
	}
	return &APIHandler{
		svc:      svc,
		identity: NewIdentity(tokens),
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Register mounts every route on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/v1/categories", h.listCategories)

	mux.HandleFunc("POST /api/v1/users", h.register)
	mux.HandleFunc("POST /api/v1/users/login", h.login)
	mux.HandleFunc("GET /api/v1/users/me", h.authed(h.me))

	mux.HandleFunc("POST /api/v1/quizzes", h.authed(h.createQuiz))
	mux.HandleFunc("GET /api/v1/quizzes", h.authed(h.listQuizzes))
	mux.HandleFunc("GET /api/v1/quizzes/{quizID}", h.authed(h.quizInfo))
	mux.HandleFunc("PUT /api/v1/quizzes/{quizID}/publish", h.authed(h.publishQuiz))
	mux.HandleFunc("POST /api/v1/quizzes/{quizID}/questions", h.authed(h.addQuestion))
	mux.HandleFunc("GET /api/v1/quizzes/{quizID}/questions", h.authed(h.listQuestions))
	mux.HandleFunc("POST /api/v1/quizzes/{quizID}/import", h.authed(h.importQuestions))
	mux.HandleFunc("POST /api/v1/quizzes/{quizID}/attempts", h.authed(h.submitAttempt))
	mux.HandleFunc("GET /api/v1/quizzes/{quizID}/leaderboard", h.authed(h.leaderboard))
	mux.HandleFunc("GET /api/v1/attempts/{attemptID}", h.authed(h.attempt))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, username string)

func (h *APIHandler) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, err := h.identity.Username(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: err.Error()})
			return
		}
		next(w, r, username)
	}
}

func (h *APIHandler) listCategories(w http.ResponseWriter, _ *http.Request) {
	out := make([]categoryResponse, 0, len(domain.Categories))
	for id, name := range domain.Categories {
		out = append(out, categoryResponse{ID: int(id), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		writeJSON(w, http.StatusNotImplemented, errorPayload{Message: "token authentication is disabled"})
		return
	}
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "Bearer " + token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *APIHandler) me(w http.ResponseWriter, _ *http.Request, username string) {
	writeJSON(w, http.StatusOK, map[string]any{"username": username, "isAuthenticated": true})
}

func (h *APIHandler) createQuiz(w http.ResponseWriter, r *http.Request, username string) {
	var req createQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	category, err := domain.ParseCategory(string(req.Category))
	if err != nil {
		h.writeError(w, err)
		return
	}
	quiz, err := h.svc.Catalog.CreateQuiz(r.Context(), req.Name, category, username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuizResponse(quiz))
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request, username string) {
	author := r.URL.Query().Get("author")
	if author == "" {
		author = username
	}
	quizzes, err := h.svc.Catalog.ListQuizzesByAuthor(r.Context(), author)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]quizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizResponse(q))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) quizInfo(w http.ResponseWriter, r *http.Request, _ string) {
	info, err := h.svc.Catalog.GetQuizInfo(r.Context(), r.PathValue("quizID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := toQuizResponse(info.Quiz)
	resp.QuestionCount = &info.QuestionCount
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) publishQuiz(w http.ResponseWriter, r *http.Request, _ string) {
	quiz, err := h.svc.Catalog.PublishQuiz(r.Context(), r.PathValue("quizID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizResponse(quiz))
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request, _ string) {
	var req addQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}
	options := make([]domain.OptionInput, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, domain.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	question, err := h.svc.Bank.AddQuestion(r.Context(), r.PathValue("quizID"), req.Text, options)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *APIHandler) listQuestions(w http.ResponseWriter, r *http.Request, _ string) {
	questions, err := h.svc.Catalog.ListQuizQuestions(r.Context(), r.PathValue("quizID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizQuestionsResponse{
		QuizID:    questions.QuizID,
		Name:      questions.Name,
		Category:  questions.Category.String(),
		Questions: questions.Questions,
	})
}

func (h *APIHandler) importQuestions(w http.ResponseWriter, r *http.Request, _ string) {
	var req importRequest
	if !h.decode(w, r, &req) {
		return
	}
	var opts []app.ImportOption
	if req.Difficulty != "" {
		opts = append(opts, app.WithDifficulty(req.Difficulty))
	}
	created, err := h.svc.Importer.ImportQuestions(r.Context(), r.PathValue("quizID"), req.Count, string(req.Category), opts...)
	if err != nil {
		status, msg := h.classify(err)
		writeJSON(w, status, errorPayload{Message: msg, Imported: len(created)})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *APIHandler) submitAttempt(w http.ResponseWriter, r *http.Request, username string) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.Engine.SubmitAttempt(r.Context(), r.PathValue("quizID"), username, req.submissions(), req.CompletionTime)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) leaderboard(w http.ResponseWriter, r *http.Request, _ string) {
	board, err := h.svc.Engine.Leaderboard(r.Context(), r.PathValue("quizID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(board.Entries) {
		board.Entries = board.Entries[:limit]
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *APIHandler) attempt(w http.ResponseWriter, r *http.Request, _ string) {
	id, err := strconv.ParseInt(r.PathValue("attemptID"), 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrAttemptNotFound)
		return
	}
	detail, err := h.svc.Engine.Attempt(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid JSON body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return false
	}
	return true
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status, msg := h.classify(err)
	writeJSON(w, status, errorPayload{Message: msg})
}

func (h *APIHandler) classify(err error) (int, string) {
	return classifyError(h.log, err)
}

// classifyError maps core errors to HTTP statuses. Anything unrecognized is
// logged and reported to the client only as "internal error".
func classifyError(log *slog.Logger, err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrProviderRequest):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	}
	log.Error("request failed", slog.Any("error", err))
	return http.StatusInternalServerError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
