// Package services talks to the two remote APIs sonorous depends on.
//
// # Spotify
//
// [SpotifyService] reads the recently played endpoint with a bearer token obtained through the
// implicit grant. There is no refresh token: a 401 surfaces as [shared.ErrExpiredToken] and the
// session logs the user out.
//
// # Gemini
//
// [GeminiService] sends one prompt to the Gemini API through the genai SDK and returns the text of
// the first candidate.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrExpiredToken] : the history request returned 401
//   - [shared.ErrFetchFailed] : any other history failure (status, transport, decoding)
//   - [shared.ErrMissingAPIKey] : no Gemini API key configured
package services
