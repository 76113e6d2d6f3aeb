package errors

import "errors"

var (
	// ErrInvalid: malformed request or no question; the caller can fix it.
	ErrInvalid = errors.New("invalid")
	// ErrConfig: a required collaborator is not configured for this deployment.
	ErrConfig = errors.New("configuration error")
	// ErrUpstream: an embedding, search or completion call failed.
	ErrUpstream = errors.New("upstream failure")
	// ErrMalformed: a completion did not match the structured output contract.
	ErrMalformed = errors.New("malformed completion")
)

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}
