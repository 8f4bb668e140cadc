package http

import (
	"encoding/json"
	"net/http"

	"ecolearn-challenge-service/internal/domain"
)

type errorBody struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidTarget, domain.KindNotAParticipant:
		return http.StatusUnprocessableEntity
	case domain.KindAlreadyResolved, domain.KindInsufficientQuestions:
		return http.StatusConflict
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindRewardPending:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func bodyFor(err error) errorBody {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		// Infrastructure details stay in the logs.
		return errorBody{Kind: kind, Message: "internal error"}
	}
	return errorBody{Kind: kind, Message: err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(domain.KindOf(err)), errorResponse{Error: bodyFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
