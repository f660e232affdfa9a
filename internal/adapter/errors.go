package adapter

import "errors"

var (
	// ErrNetworkUnreachable covers the retryable failure class: transport
	// errors, timeouts and 5xx responses. The coordinator reacts by entering
	// backoff; nothing is surfaced to the caller.
	ErrNetworkUnreachable = errors.New("remote service unreachable")

	// ErrRemoteRejected covers permanent validation-type failures (4xx). The
	// affected record stays pending but is excluded from automatic retry.
	ErrRemoteRejected = errors.New("remote service rejected request")

	// ErrUnauthorized is returned for 401 responses. Treated as permanent
	// until the surrounding application supplies a fresh token.
	ErrUnauthorized = errors.New("client unauthorized")
)
