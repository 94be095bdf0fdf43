package httputil

import (
	"log/slog"
	"net/http"

	"github.com/EmptySpace206/PHRatings/internal/league"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	slog.Warn("unauthorized", "message", msg)
	http.Error(w, msg, http.StatusUnauthorized)
}

// DomainError maps a domain rejection to its HTTP status. Anything without a
// kind is treated as an internal failure.
func DomainError(w http.ResponseWriter, msg string, err error) {
	kind := league.KindOf(err)
	if kind == "" {
		InternalServerError(w, msg, err)
		return
	}

	status := http.StatusBadRequest
	switch kind {
	case league.KindNotFound:
		status = http.StatusNotFound
	case league.KindForbidden:
		status = http.StatusForbidden
	case league.KindUndoWindowExpired:
		status = http.StatusForbidden
	case league.KindInvalidState, league.KindAlreadyJoined:
		status = http.StatusConflict
	}

	slog.Warn("request rejected", "kind", string(kind), "error", err)
	http.Error(w, err.Error(), status)
}
