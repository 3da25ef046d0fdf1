package domain

// AuthState is the shell's top-level state.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthView is the sub-view shown while unauthenticated.
type AuthView int

const (
	AuthViewLogin AuthView = iota
	AuthViewRegister
)

func (v AuthView) String() string {
	if v == AuthViewRegister {
		return "register"
	}
	return "login"
}
