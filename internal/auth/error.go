package auth

// Error is returned when a publisher is not allowed to publish.
// Other errors returned by Manager.Authorize are failures
// of the authorization collaborator and can be retried.
type Error struct {
	Wrapped error
}

// Error implements the error interface.
func (e Error) Error() string {
	return "authorization failed: " + e.Wrapped.Error()
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Wrapped
}
