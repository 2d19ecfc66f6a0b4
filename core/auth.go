package core

// Principal is the authenticated actor (a teacher) as asserted by the
// identity provider. It is never persisted; the id is the owner key on
// courses.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
