package services

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID   uint
	Username string
	Email    string
	Roles    []string
}

// IsElevated reports whether any of the actor's roles is in elevated.
func (a Actor) IsElevated(elevated []string) bool {
	for _, r := range a.Roles {
		for _, e := range elevated {
			if r == e {
				return true
			}
		}
	}
	return false
}

// Label is the identity recorded on logs, e-mail if known, else username.
func (a Actor) Label() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Username
}
