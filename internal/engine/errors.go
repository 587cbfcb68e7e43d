package engine

import "fmt"

// ErrorKind classifies an engine-boundary failure so callers can branch on
// it without string-matching a message, per spec §7.
type ErrorKind string

const (
	KindInvalidConfig           ErrorKind = "InvalidConfig"
	KindInvalidInput            ErrorKind = "InvalidInput"
	KindTooFewPlayers           ErrorKind = "TooFewPlayers"
	KindImpossiblePairing       ErrorKind = "ImpossiblePairing"
	KindRoundNotReady           ErrorKind = "RoundNotReady"
	KindInternalConsistencyError ErrorKind = "InternalConsistencyError"
)

// RemedyAction is one operator-facing suggestion attached to an
// ImpossiblePairing failure.
type RemedyAction string

const (
	RemedyDropPlayer    RemedyAction = "DROP_PLAYER"
	RemedyAllowRematch  RemedyAction = "ALLOW_REMATCH"
	RemedyEndSwissEarly RemedyAction = "END_SWISS_EARLY"
)

// Error is the single error type the engine returns across its boundary.
// It carries a Kind for programmatic dispatch and an optional payload for
// the kinds that need structured detail (ImpossiblePairing).
type Error struct {
	Kind    ErrorKind
	Message string
	// Suggestions is populated only for KindImpossiblePairing.
	Suggestions []Suggestion
	// wrapped is the underlying cause, if any (e.g. a decode error from a store).
	wrapped error
}

// Suggestion is one remediation an operator could take to unblock pairing.
type Suggestion struct {
	Action RemedyAction
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidConfigf(format string, args ...any) *Error {
	return newError(KindInvalidConfig, format, args...)
}

func invalidInputf(format string, args ...any) *Error {
	return newError(KindInvalidInput, format, args...)
}

func tooFewPlayers(n int) *Error {
	return newError(KindTooFewPlayers, "need at least 2 eligible registrations, have %d", n)
}

func impossiblePairing(reason string, suggestions ...Suggestion) *Error {
	return &Error{Kind: KindImpossiblePairing, Message: reason, Suggestions: suggestions}
}

func roundNotReady(round int) *Error {
	return newError(KindRoundNotReady, "round %d is not complete: at least one match has no end_time", round-1)
}

func internalConsistencyf(format string, args ...any) *Error {
	return newError(KindInternalConsistencyError, format, args...)
}
