package giveaway

import (
	"errors"
	"fmt"
)

// Code tags every failure the engine reports to command handlers. Declined-join
// reasons share the type so callers surface them the same way.
type Code string

const (
	CodeOK                   Code = "OK"
	CodeNotFound             Code = "GIVEAWAY_NOT_FOUND"
	CodeEnded                Code = "GIVEAWAY_ENDED"
	CodeNotEnded             Code = "GIVEAWAY_NOT_ENDED"
	CodeNoParticipants       Code = "NO_PARTICIPANTS"
	CodeInsufficientEntrants Code = "INSUFFICIENT_PARTICIPANTS"
	CodeInvalidWinnerCount   Code = "INVALID_WINNER_COUNT"
	CodeInvalidDuration      Code = "INVALID_DURATION"
	CodeUserNotInGiveaway    Code = "USER_NOT_IN_GIVEAWAY"
	CodeUserRequired         Code = "USER_REQUIRED"
	CodeChannelUnavailable   Code = "CHANNEL_UNAVAILABLE"
	CodeEligibilityUnknown   Code = "ELIGIBILITY_UNKNOWN"
	CodeStopped              Code = "ENGINE_STOPPED"

	CodeInsufficientActivity Code = "INSUFFICIENT_ACTIVITY"
	CodeMissingRequiredRole  Code = "MISSING_REQUIRED_ROLE"
	CodeHasExcludedRole      Code = "HAS_EXCLUDED_ROLE"
	CodeInsufficientInvites  Code = "INSUFFICIENT_INVITES"
)

type Error struct {
	Code       Code
	GiveawayID string
	Err        error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.GiveawayID != "" {
		msg = fmt.Sprintf("%s (giveaway %s)", msg, e.GiveawayID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, giveawayID string) *Error {
	return &Error{Code: code, GiveawayID: giveawayID}
}

// CodeOf returns the tag carried by err, or the empty code when err is nil or
// did not come from the engine.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return ""
}
