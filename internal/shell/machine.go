// Package shell holds the client's navigation state: whether a user is
// signed in and, if not, which auth form is showing.
package shell

import "github.com/naveenspark/tutor/pkg/domain"

// Machine is the shell state. The zero value is unauthenticated on the
// login form.
type Machine struct {
	state domain.AuthState
	view  domain.AuthView
}

// New returns the starting state: authenticated iff a token was present.
func New(loggedIn bool) Machine {
	if loggedIn {
		return Machine{state: domain.StateAuthenticated}
	}
	return Machine{state: domain.StateUnauthenticated, view: domain.AuthViewLogin}
}

// State returns the auth state.
func (m Machine) State() domain.AuthState { return m.state }

// View returns the auth form shown while unauthenticated.
func (m Machine) View() domain.AuthView { return m.view }

// Authenticated reports whether the feature views are showing.
func (m Machine) Authenticated() bool {
	return m.state == domain.StateAuthenticated
}

// LoginSucceeded moves to the authenticated state from anywhere.
func (m Machine) LoginSucceeded() Machine {
	return Machine{state: domain.StateAuthenticated}
}

// LoggedOut returns to the login form from anywhere.
func (m Machine) LoggedOut() Machine {
	return Machine{state: domain.StateUnauthenticated, view: domain.AuthViewLogin}
}

// ShowRegister switches to the registration form. No-op when authenticated.
func (m Machine) ShowRegister() Machine {
	if m.Authenticated() {
		return m
	}
	m.view = domain.AuthViewRegister
	return m
}

// ShowLogin switches to the login form. No-op when authenticated.
func (m Machine) ShowLogin() Machine {
	if m.Authenticated() {
		return m
	}
	m.view = domain.AuthViewLogin
	return m
}

func (m Machine) String() string {
	if m.Authenticated() {
		return m.state.String()
	}
	return m.state.String() + "/" + m.view.String()
}
