package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingClientID = fmt.Errorf("missing Spotify client id")
	ErrMissingAPIKey   = fmt.Errorf("missing Gemini API key")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrExpiredToken     = fmt.Errorf("access token expired")
	ErrAuthTimeout      = fmt.Errorf("timed out waiting for authorization callback")

	// API and service errors
	ErrFetchFailed        = fmt.Errorf("failed to fetch listening history")
	ErrGenerationFailed   = fmt.Errorf("failed to generate story")
	ErrGenerationInFlight = fmt.Errorf("a story is already being generated")
	ErrNoTracks           = fmt.Errorf("no tracks loaded")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
