package league

import "errors"

// Kind classifies a domain rejection so callers can map it to a response
// without string matching. All rejections are deterministic given stored state.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindExpired           Kind = "expired"
	KindForbidden         Kind = "forbidden"
	KindPlayerInactive    Kind = "player_inactive"
	KindAlreadyJoined     Kind = "already_joined"
	KindNotParticipant    Kind = "not_participant"
	KindUndoWindowExpired Kind = "undo_window_expired"
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the domain kind of err, or "" for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
