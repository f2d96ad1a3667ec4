package security

import "errors"

// Error taxonomy for the token boundary. Callers branch with errors.Is;
// none of these ever carry secret or signature material.
var (
	// ErrValidation marks malformed path or selection input. Recoverable:
	// the caller corrects the input and retries.
	ErrValidation = errors.New("invalid path input")

	// ErrConfiguration means no signing secret is available. Issuance
	// fails closed; there is nothing a client can do about it.
	ErrConfiguration = errors.New("no token signing secret configured")

	// ErrAuthentication marks a signature mismatch. Logged as a security
	// event, never auto-retried.
	ErrAuthentication = errors.New("token signature verification failed")

	// ErrExpiredToken marks an elapsed TTL. Expected during long sessions;
	// the client refreshes by re-navigating.
	ErrExpiredToken = errors.New("token expired")

	// ErrAuthorization marks a path outside the current allowlist, or a
	// selection entry that cannot be traced to an issued token.
	ErrAuthorization = errors.New("path not permitted by allowlist")
)
