package model

// User is the echo of the authenticated account returned by the
// remote gateway alongside a session credential.
type User struct {
	// ID is the account's unique identifier.
	ID string `json:"$id"`

	// Email is the address the account was registered with.
	Email string `json:"email"`
}
