// Package consent enforces the child-data-protection policy: a child account
// must have verified (or at least acknowledged) parental consent before any
// data-collection action is accepted.
package consent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/semillita/semillita/internal/store"
)

// ErrUserNotFound is returned when the acting user id resolves to nothing.
var ErrUserNotFound = errors.New("user not found")

// Decision classifies the gate's outcome for a single action.
type Decision int

const (
	// Allow: read action, or an account in good standing.
	Allow Decision = iota
	// AllowUnidentified: the action carried no user id, so validation is
	// delegated to the underlying handler. A deliberate policy branch, not
	// a fallthrough.
	AllowUnidentified
	// AllowDegraded: terms were acknowledged but verification is pending.
	// Permitted, logged as a degraded-trust path.
	AllowDegraded
	// Deny: a child account with no form of consent.
	Deny
)

// Result carries the decision plus the machine-readable rejection details a
// client needs to route the user into the consent flow.
type Result struct {
	Decision Decision
	Code     string
	Message  string
	Redirect string
}

const (
	CodeConsentRequired = "CONSENT_REQUIRED"
	consentRedirectPath = "/consent"
)

type Gate struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewGate(users *store.UserStore, logger *slog.Logger) *Gate {
	return &Gate{users: users, logger: logger}
}

// Check decides whether the acting user may perform the action. Reads always
// pass. A zero userID means the action carried no resolvable user id.
func (g *Gate) Check(userID int64, mutating bool) (Result, error) {
	if !mutating {
		return Result{Decision: Allow}, nil
	}

	if userID == 0 {
		g.logger.Debug("consent gate: no user id on mutating action, delegating to handler")
		return Result{Decision: AllowUnidentified}, nil
	}

	user, err := g.users.GetByID(userID)
	if err != nil {
		return Result{}, fmt.Errorf("consent check: %w", err)
	}
	if user == nil {
		return Result{}, ErrUserNotFound
	}

	if user.Role != "child" {
		return Result{Decision: Allow}, nil
	}

	if user.ConsentVerified {
		return Result{Decision: Allow}, nil
	}

	if user.ParentalConsent {
		g.logger.Warn("consent gate: allowing on acknowledged terms without verification",
			"user_id", user.ID)
		return Result{Decision: AllowDegraded}, nil
	}

	g.logger.Info("consent gate: rejecting unconsented child account", "user_id", user.ID)
	return Result{
		Decision: Deny,
		Code:     CodeConsentRequired,
		Message:  "parental consent is required before saving data",
		Redirect: consentRedirectPath,
	}, nil
}
