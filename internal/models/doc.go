// Package models defines the domain types shared by every layer of sonorous.
//
//   - [Track] : one play event from the listening history, immutable once mapped
//   - [Genre] : the closed set of narrative styles a story can be written in
//   - [Credentials] : the user-supplied client id and the bearer access token
//   - [KeyValueStore] : the persistence seam for the two credential strings
//   - [CompletionRequest] : one prompt plus sampling parameters for the language model
//
// Tracks are always carried most-recent-first, as the history endpoint returns them.
// Consumers that need chronological order (the story prompt) reverse a copy.
package models
