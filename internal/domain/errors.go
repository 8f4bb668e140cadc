package domain

import "errors"

// Kind classifies failures reported to callers.
type Kind string

const (
	KindNotFound              Kind = "NotFound"
	KindForbidden             Kind = "Forbidden"
	KindInvalidTarget         Kind = "InvalidTarget"
	KindNotAParticipant       Kind = "NotAParticipant"
	KindAlreadyResolved       Kind = "AlreadyResolved"
	KindInsufficientQuestions Kind = "InsufficientQuestions"
	KindInvalidArgument       Kind = "InvalidArgument"
	KindUnauthorized          Kind = "Unauthorized"
	// KindRewardPending is a warning: the challenge resolved but the winner was not credited yet.
	KindRewardPending Kind = "RewardPending"
	// KindInternal covers infrastructure failures outside the business taxonomy.
	KindInternal Kind = "Internal"
)

// Error is a business failure with a stable kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrChallengeNotFound is returned when a challenge or invite id does not resolve.
	ErrChallengeNotFound = &Error{Kind: KindNotFound, Message: "challenge not found"}
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "user not found"}
	// ErrForbidden is returned when the caller is not the invite recipient.
	ErrForbidden = &Error{Kind: KindForbidden, Message: "caller is not allowed to act on this invite"}
	// ErrInvalidTarget is returned when an invite targets an unknown user or the sender.
	ErrInvalidTarget = &Error{Kind: KindInvalidTarget, Message: "invalid invite target"}
	// ErrNotAParticipant is returned when the caller is neither side of the challenge.
	ErrNotAParticipant = &Error{Kind: KindNotAParticipant, Message: "user is not a participant in this challenge"}
	// ErrAlreadyResolved is returned for actions on a challenge that can no longer change.
	ErrAlreadyResolved = &Error{Kind: KindAlreadyResolved, Message: "challenge already resolved"}
	// ErrNotResolved is returned when a reward is settled before the challenge completed.
	ErrNotResolved = &Error{Kind: KindInvalidArgument, Message: "challenge has not been resolved"}
	// ErrInsufficientQuestions is returned when the eligible pool is smaller than requested.
	ErrInsufficientQuestions = &Error{Kind: KindInsufficientQuestions, Message: "not enough unsolved questions"}
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	// ErrUnauthorized is returned when no caller identity is available.
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "missing or invalid credentials"}
	// ErrRewardPending accompanies a committed resolution whose reward credit failed.
	ErrRewardPending = &Error{Kind: KindRewardPending, Message: "challenge resolved, reward pending"}
	// ErrQuestionNotFound indicates a question id is not in the catalog.
	ErrQuestionNotFound = &Error{Kind: KindNotFound, Message: "question not found"}
)

// KindOf reports the taxonomy kind of err, or KindInternal for anything else.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
