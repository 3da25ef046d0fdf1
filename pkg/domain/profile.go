package domain

// Profile is the identity returned by /me. It is never persisted.
type Profile struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
