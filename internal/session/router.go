package session

type View string

const (
	LoginView     View = "login"
	DashboardView View = "dashboard"
	HistoryView   View = "history"
	AdminView     View = "admin"
)

// Route maps session state to the active view. Pure; rendering AdminView is
// only possible for states the Navigate guard admitted, but the admin flag is
// re-checked here anyway so a stale persisted page can never expose the
// admin view.
func Route(s State) View {
	if !s.Authenticated {
		return LoginView
	}

	switch s.Page {
	case PageHistory:
		return HistoryView
	case PageAdmin:
		if s.IsAdmin {
			return AdminView
		}
		return DashboardView
	default:
		return DashboardView
	}
}
