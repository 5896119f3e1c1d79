package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidProduct   = errors.New("unknown product")
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrGatewayRequest   = errors.New("payment gateway request failed")
	ErrGenerationFailed = errors.New("credential generation failed")
	ErrArtifactNotFound = errors.New("generated artifact not found")
	ErrContent          = errors.New("malformed or missing content")
)

// IsContent reports whether err is a content fault (bad locale data,
// missing catalog entry). Content faults are reported to the user
// immediately and never retried.
func IsContent(err error) bool {
	return errors.Is(err, ErrContent) || errors.Is(err, ErrNotFound)
}
