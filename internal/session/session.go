// Package session holds the per-session authorization state machine and the
// page router. State values are immutable; every transition returns the next
// state so callers can persist it only after the guard passed.
package session

import "errors"

type Page string

const (
	PageLogin     Page = "login"
	PageDashboard Page = "dashboard"
	PageHistory   Page = "history"
	PageAdmin     Page = "admin"
)

func (p Page) Valid() bool {
	switch p {
	case PageLogin, PageDashboard, PageHistory, PageAdmin:
		return true
	}
	return false
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPermissionDenied = errors.New("insufficient permission")
	ErrInvalidPage      = errors.New("invalid page")
)

// State is the session's authorization state. The zero value is not valid;
// use NewState.
//
// Invariants, checked by every transition:
//   - Page != PageLogin implies Authenticated
//   - Page == PageAdmin implies IsAdmin
type State struct {
	Authenticated bool
	UserID        string
	IsAdmin       bool
	Page          Page
}

// NewState returns the logged-out initial state.
func NewState() State {
	return State{Page: PageLogin}
}

// LoginSucceeded transitions to the authenticated dashboard state. The
// credential check itself is the caller's guard; this only records its
// outcome.
func (s State) LoginSucceeded(userID string, isAdmin bool) State {
	return State{
		Authenticated: true,
		UserID:        userID,
		IsAdmin:       isAdmin,
		Page:          PageDashboard,
	}
}

// Logout returns to the logged-out state from anywhere, clearing identity.
func (s State) Logout() State {
	return NewState()
}

// Navigate applies a page change. Dashboard and History are always reachable
// while authenticated; Admin additionally requires the admin flag. A denied
// Admin navigation leaves the state unchanged and reports
// ErrPermissionDenied so the caller can render the refusal without mutating
// anything.
func (s State) Navigate(target Page) (State, error) {
	if !s.Authenticated {
		return s, ErrNotAuthenticated
	}

	switch target {
	case PageDashboard, PageHistory:
		next := s
		next.Page = target
		return next, nil
	case PageAdmin:
		if !s.IsAdmin {
			return s, ErrPermissionDenied
		}
		next := s
		next.Page = target
		return next, nil
	default:
		return s, ErrInvalidPage
	}
}
