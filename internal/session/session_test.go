package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateIsLoggedOut(t *testing.T) {
	s := NewState()
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.UserID)
	assert.False(t, s.IsAdmin)
	assert.Equal(t, PageLogin, s.Page)
}

func TestLoginSucceeded(t *testing.T) {
	s := NewState().LoginSucceeded("u1", false)
	assert.True(t, s.Authenticated)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, PageDashboard, s.Page)
}

func TestLogoutFromAnyStateClearsIdentity(t *testing.T) {
	states := []State{
		NewState().LoginSucceeded("u1", false),
		NewState().LoginSucceeded("u2", true),
		func() State {
			s, err := NewState().LoginSucceeded("u3", true).Navigate(PageAdmin)
			require.NoError(t, err)
			return s
		}(),
	}

	for _, s := range states {
		out := s.Logout()
		assert.Equal(t, NewState(), out)
		assert.Empty(t, out.UserID)
	}
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name     string
		start    State
		target   Page
		wantPage Page
		wantErr  error
	}{
		{
			name:     "dashboard to history",
			start:    NewState().LoginSucceeded("u1", false),
			target:   PageHistory,
			wantPage: PageHistory,
		},
		{
			name:     "history back to dashboard",
			start:    State{Authenticated: true, UserID: "u1", Page: PageHistory},
			target:   PageDashboard,
			wantPage: PageDashboard,
		},
		{
			name:     "admin allowed for admin",
			start:    NewState().LoginSucceeded("u1", true),
			target:   PageAdmin,
			wantPage: PageAdmin,
		},
		{
			name:     "admin denied for non-admin leaves page unchanged",
			start:    NewState().LoginSucceeded("u1", false),
			target:   PageAdmin,
			wantPage: PageDashboard,
			wantErr:  ErrPermissionDenied,
		},
		{
			name:    "unauthenticated cannot navigate",
			start:   NewState(),
			target:  PageDashboard,
			wantErr: ErrNotAuthenticated,
		},
		{
			name:     "login is not a navigation target",
			start:    NewState().LoginSucceeded("u1", false),
			target:   PageLogin,
			wantPage: PageDashboard,
			wantErr:  ErrInvalidPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.start.Navigate(tt.target)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.start, got, "denied transition must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.start.UserID, got.UserID)
		})
	}
}

// Exhaustively walks every transition from every representative state and
// asserts no reachable state pairs the admin page with a non-admin identity.
func TestNoReachableStateHasAdminPageWithoutAdminFlag(t *testing.T) {
	check := func(s State) {
		if s.Page == PageAdmin {
			assert.True(t, s.IsAdmin)
			assert.True(t, s.Authenticated)
		}
	}

	seeds := []State{
		NewState(),
		NewState().LoginSucceeded("u1", false),
		NewState().LoginSucceeded("u2", true),
	}
	pages := []Page{PageLogin, PageDashboard, PageHistory, PageAdmin}

	for _, seed := range seeds {
		check(seed)
		for _, p := range pages {
			next, _ := seed.Navigate(p)
			check(next)
			check(next.Logout())
			for _, q := range pages {
				again, _ := next.Navigate(q)
				check(again)
			}
		}
	}
}

func TestRoute(t *testing.T) {
	admin := NewState().LoginSucceeded("a", true)
	adminOnAdmin, err := admin.Navigate(PageAdmin)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		state State
		want  View
	}{
		{"logged out", NewState(), LoginView},
		{"fresh login", NewState().LoginSucceeded("u1", false), DashboardView},
		{"history", State{Authenticated: true, UserID: "u1", Page: PageHistory}, HistoryView},
		{"admin on admin page", adminOnAdmin, AdminView},
		{"stale admin page without flag falls back", State{Authenticated: true, UserID: "u1", Page: PageAdmin}, DashboardView},
		{"logged-out state with stale page still routes to login", State{Page: PageAdmin}, LoginView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.state))
		})
	}
}
