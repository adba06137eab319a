package giveaway

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestEvaluateNoRequirements(t *testing.T) {
	decision, err := Evaluate(Terms{WinnerCount: 1}, Facts{})
	if err != nil || !decision.Allowed {
		t.Fatalf("expected allowed, got %+v %v", decision, err)
	}
}

func TestEvaluateStopsAtFirstFailure(t *testing.T) {
	terms := Terms{MinMessages: 5, RequiredRoleID: "vip", RequiredInvites: 2}
	facts := Facts{Activity: intPtr(1), Roles: map[string]bool{"vip": false}, Invites: intPtr(0)}
	decision, err := Evaluate(terms, facts)
	if err != nil || decision.Allowed || decision.Reason != CodeInsufficientActivity {
		t.Fatalf("expected activity failure, got %+v %v", decision, err)
	}
}

func TestEvaluateUnknownFactFailsClosed(t *testing.T) {
	terms := Terms{ExcludedRoleID: "muted"}
	decision, err := Evaluate(terms, Facts{Activity: intPtr(10)})
	if decision.Allowed {
		t.Fatalf("unknown role must not pass")
	}
	if decision.Reason != CodeHasExcludedRole || !errors.Is(err, ErrFactUnavailable) {
		t.Fatalf("expected excluded-role gate unavailable, got %+v %v", decision, err)
	}

	decision, err = Evaluate(Terms{RequiredInvites: 1}, Facts{})
	if decision.Allowed || !errors.Is(err, ErrFactUnavailable) {
		t.Fatalf("unknown invites must not pass, got %+v %v", decision, err)
	}
}

func TestTermsHasRequirements(t *testing.T) {
	if (Terms{Prize: "x", WinnerCount: 3}).HasRequirements() {
		t.Fatalf("expected no requirements")
	}
	if !(Terms{ExcludedRoleID: "r"}).HasRequirements() {
		t.Fatalf("expected requirements")
	}
}
