package session

import (
	"github.com/desertthunder/sonorous/internal/models"
)

// Event is an input to [Update].
type Event interface{ event() }

// Started loads persisted credentials and the fragment of the current address, if any.
type Started struct {
	Credentials models.Credentials
	Fragment    string
}

// CallbackReceived carries the fragment of an authorization redirect.
type CallbackReceived struct{ Fragment string }

type ClientIDSubmitted struct{ ID string }

type SettingsToggled struct{ Open bool }

// LoginRequested starts the implicit grant. AuthURL overrides the authorize endpoint.
type LoginRequested struct {
	RedirectURI string
	AuthURL     string
}

type RefreshRequested struct{}

// HistoryLoaded is the result of a [FetchHistory] effect.
type HistoryLoaded struct {
	Epoch  int
	Tracks []models.Track
	Err    error
}

type GenreSelected struct{ Genre models.Genre }

type GenerateRequested struct{}

// StoryGenerated is the result of a [GenerateStory] effect.
type StoryGenerated struct {
	Epoch int
	Text  string
	Err   error
}

type LogoutRequested struct{}

// EffectFailed reports an effect that could not be performed, such as a storage write.
type EffectFailed struct {
	Effect Effect
	Err    error
}

func (Started) event()           {}
func (CallbackReceived) event()  {}
func (ClientIDSubmitted) event() {}
func (SettingsToggled) event()   {}
func (LoginRequested) event()    {}
func (RefreshRequested) event()  {}
func (HistoryLoaded) event()     {}
func (GenreSelected) event()     {}
func (GenerateRequested) event() {}
func (StoryGenerated) event()    {}
func (LogoutRequested) event()   {}
func (EffectFailed) event()      {}
