package giveaway

import (
	"errors"
	"fmt"
)

// ErrFactUnavailable marks a gate whose input could not be obtained. The
// evaluator never lets such a gate pass.
var ErrFactUnavailable = errors.New("eligibility fact unavailable")

type Decision struct {
	Allowed bool
	Reason  Code
}

// Facts carries what is known about a candidate. A nil pointer or nil map means
// the collaborator that supplies it failed or was not consulted.
type Facts struct {
	Activity *int
	Roles    map[string]bool
	Invites  *int
}

// Evaluate runs the gates in fixed order (activity, required role, excluded
// role, invites) and stops at the first failure.
func Evaluate(terms Terms, facts Facts) (Decision, error) {
	if terms.MinMessages > 0 {
		if facts.Activity == nil {
			return deny(CodeInsufficientActivity), unavailable("activity")
		}
		if *facts.Activity < terms.MinMessages {
			return deny(CodeInsufficientActivity), nil
		}
	}

	if terms.RequiredRoleID != "" {
		has, known := facts.Roles[terms.RequiredRoleID]
		if !known {
			return deny(CodeMissingRequiredRole), unavailable("required role")
		}
		if !has {
			return deny(CodeMissingRequiredRole), nil
		}
	}

	if terms.ExcludedRoleID != "" {
		has, known := facts.Roles[terms.ExcludedRoleID]
		if !known {
			return deny(CodeHasExcludedRole), unavailable("excluded role")
		}
		if has {
			return deny(CodeHasExcludedRole), nil
		}
	}

	if terms.RequiredInvites > 0 {
		if facts.Invites == nil {
			return deny(CodeInsufficientInvites), unavailable("invites")
		}
		if *facts.Invites < terms.RequiredInvites {
			return deny(CodeInsufficientInvites), nil
		}
	}

	return Decision{Allowed: true, Reason: CodeOK}, nil
}

func deny(reason Code) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func unavailable(gate string) error {
	return fmt.Errorf("%s: %w", gate, ErrFactUnavailable)
}
