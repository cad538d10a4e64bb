package session

import (
	"errors"

	"github.com/desertthunder/sonorous/internal/auth"
	"github.com/desertthunder/sonorous/internal/shared"
)

// Update applies ev to s and returns the next state with the effects to perform, in order.
//
// Events that do not apply to the current state return s unchanged and no effects.
func Update(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Started:
		s.ClientID = ev.Credentials.ClientID
		s.Token = ev.Credentials.Token
		s.SettingsOpen = s.ClientID == ""

		next, effects := receiveFragment(s, ev.Fragment)
		if next.LoggedIn() && !next.Loading() {
			var fetch []Effect
			next, fetch = startFetch(next)
			effects = append(effects, fetch...)
		}
		return next, effects

	case CallbackReceived:
		return receiveFragment(s, ev.Fragment)

	case ClientIDSubmitted:
		s.ClientID = ev.ID
		s.SettingsOpen = ev.ID == ""
		s.Notice = ""
		return s, []Effect{SaveClientID{ID: ev.ID}}

	case SettingsToggled:
		s.SettingsOpen = ev.Open || s.ClientID == ""
		return s, nil

	case LoginRequested:
		if s.ClientID == "" {
			s.SettingsOpen = true
			s.Notice = NoticeMissingClientID
			return s, nil
		}
		s.Notice = ""
		url := auth.NewAuthorizer(ev.AuthURL).URL(s.ClientID, ev.RedirectURI)
		return s, []Effect{Navigate{URL: url}}

	case RefreshRequested:
		if !s.LoggedIn() {
			return s, nil
		}
		return startFetch(s)

	case HistoryLoaded:
		if ev.Epoch != s.Epoch || !s.LoggedIn() {
			return s, nil
		}
		s.Pending = max(s.Pending-1, 0)

		switch {
		case errors.Is(ev.Err, shared.ErrExpiredToken):
			s = loggedOut(s)
			s.Notice = NoticeSessionExpired
			return s, []Effect{ClearToken{}}
		case ev.Err != nil:
			s.FetchErr = ev.Err
			return s, nil
		default:
			s.Tracks = ev.Tracks
			s.Fetched = true
			s.FetchErr = nil
			return s, nil
		}

	case GenreSelected:
		if ev.Genre.Valid() {
			s.Genre = ev.Genre
		}
		return s, nil

	case GenerateRequested:
		if !s.CanGenerate() {
			return s, nil
		}
		s.Generation = InProgress
		s.Story = ""
		s.StoryErr = nil
		return s, []Effect{GenerateStory{Tracks: s.Tracks, Genre: s.Genre, Epoch: s.Epoch}}

	case StoryGenerated:
		if ev.Epoch != s.Epoch || s.Generation != InProgress {
			return s, nil
		}
		if ev.Err != nil {
			s.Generation = Errored
			s.Story = ""
			s.StoryErr = ev.Err
			return s, nil
		}
		s.Generation = Completed
		s.Story = ev.Text
		return s, nil

	case LogoutRequested:
		if !s.LoggedIn() {
			return s, nil
		}
		s = loggedOut(s)
		s.Notice = ""
		return s, []Effect{ClearToken{}}

	case EffectFailed:
		if ev.Err != nil {
			s.Notice = ev.Effect.Name() + " failed: " + ev.Err.Error()
		}
		return s, nil
	}

	return s, nil
}

// receiveFragment stores a token found in fragment and starts a new login epoch.
func receiveFragment(s State, fragment string) (State, []Effect) {
	if fragment == "" {
		return s, nil
	}

	token, ok := auth.ExtractToken(fragment)
	if !ok {
		if auth.CallbackError(fragment) != "" {
			s.Notice = NoticeAccessDenied
			return s, []Effect{ClearFragment{}}
		}
		return s, nil
	}

	s = loggedOut(s)
	s.Token = token
	s.Notice = ""

	next, fetch := startFetch(s)
	return next, append([]Effect{SaveToken{Token: token}, ClearFragment{}}, fetch...)
}

func startFetch(s State) (State, []Effect) {
	s.Pending++
	return s, []Effect{FetchHistory{Token: s.Token, Epoch: s.Epoch}}
}

// loggedOut drops everything tied to the current token and bumps the epoch. The client id,
// settings flag and genre survive.
func loggedOut(s State) State {
	s.Token = ""
	s.Tracks = nil
	s.Fetched = false
	s.Pending = 0
	s.FetchErr = nil
	s.Generation = Idle
	s.Story = ""
	s.StoryErr = nil
	s.Epoch++
	return s
}
