package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ecolearn-challenge-service/internal/app"
	"ecolearn-challenge-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the challenge, question and points use cases over JSON.
type Handler struct {
	challenges *app.ChallengeService
	questions  *app.QuestionService
	points     *app.PointsService
	validate   *validator.Validate
	log        *zap.SugaredLogger
}

func NewHandler(challenges *app.ChallengeService, questions *app.QuestionService, points *app.PointsService, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		challenges: challenges,
		questions:  questions,
		points:     points,
		validate:   validator.New(),
		log:        log,
	}
}

type inviteRequest struct {
	FriendID     string `json:"friendId" validate:"required"`
	NumQuestions int    `json:"numQuestions" validate:"omitempty,min=1,max=50"`
}

type inviteIDRequest struct {
	InviteID string `json:"inviteId" validate:"required"`
}

type challengeIDRequest struct {
	ChallengeID string `json:"challengeId" validate:"required"`
}

type answerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	IsCorrect  bool   `json:"isCorrect"`
}

type submitRequest struct {
	ChallengeID string          `json:"challengeId" validate:"required"`
	Answers     []answerRequest `json:"answers" validate:"required,dive"`
	// TimeTaken is in seconds.
	TimeTaken *float64 `json:"timeTaken" validate:"required,gte=0,lte=86400"`
}

type solvedRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
}

type submitResponse struct {
	domain.SubmitOutcome
	Warning *errorBody `json:"warning,omitempty"`
}

type balanceResponse struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !h.decode(w, r, &req) {
		return
	}
	challenge, err := h.challenges.CreateInvite(r.Context(), caller(r), req.FriendID, req.NumQuestions)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.challenges.ListPendingInvites(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invites": invites})
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	challenge, err := h.challenges.AcceptInvite(r.Context(), req.InviteID, caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	challenge, err := h.challenges.DeclineInvite(r.Context(), req.InviteID, caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *Handler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	challenge, err := h.challenges.MarkStarted(r.Context(), req.ChallengeID, caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, IsCorrect: a.IsCorrect})
	}
	outcome, err := h.challenges.Submit(r.Context(), req.ChallengeID, caller(r), answers, domain.SecondsToDuration(*req.TimeTaken))
	if err != nil && !errors.Is(err, domain.ErrRewardPending) {
		h.fail(w, r, err)
		return
	}
	resp := submitResponse{SubmitOutcome: outcome}
	if err != nil {
		warning := bodyFor(err)
		resp.Warning = &warning
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.challenges.GetChallenge(r.Context(), chi.URLParam(r, "id"), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *Handler) ChallengeQuestions(w http.ResponseWriter, r *http.Request) {
	difficulty, err := domain.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	questions, err := h.questions.ChallengeQuestions(r.Context(), chi.URLParam(r, "id"), caller(r), difficulty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) SettleReward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	balance, err := h.challenges.SettleReward(r.Context(), id, caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"challengeId": id, "balance": balance})
}

func (h *Handler) RandomQuestions(w http.ResponseWriter, r *http.Request) {
	difficulty, err := domain.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count, err := intQuery(r, "count")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	questions, err := h.questions.GetQuestions(r.Context(), caller(r), difficulty, count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *Handler) UnsolvedQuestions(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.questions.UnsolvedByDifficulty(r.Context(), caller(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (h *Handler) MarkSolved(w http.ResponseWriter, r *http.Request) {
	var req solvedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.questions.MarkSolved(r.Context(), caller(r), req.QuestionID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MyPoints(w http.ResponseWriter, r *http.Request) {
	userID := caller(r)
	balance, err := h.points.Balance(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Points: balance})
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.points.Leaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidArgument))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, validationMessage(err)))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		h.log.Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, err)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, name)
	}
	return n, nil
}

// caller is only valid behind Authenticator.Middleware.
func caller(r *http.Request) string {
	id, _ := UserIDFrom(r.Context())
	return id
}
