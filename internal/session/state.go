package session

import (
	"github.com/desertthunder/sonorous/internal/models"
)

// Phase is the session position derived from [State].
type Phase int

const (
	LoggedOut Phase = iota
	NoTracks
	TracksLoaded
	Generating
	StoryReady
)

func (p Phase) String() string {
	switch p {
	case LoggedOut:
		return "logged out"
	case NoTracks:
		return "no tracks"
	case TracksLoaded:
		return "tracks loaded"
	case Generating:
		return "generating"
	case StoryReady:
		return "story ready"
	default:
		return "unknown"
	}
}

// Generation is the status of the most recent story request.
type Generation int

const (
	Idle Generation = iota
	InProgress
	Completed
	Errored
)

// Notices shown to the user. They are plain text, not errors.
const (
	NoticeMissingClientID = "Please set your Spotify Client ID in settings first."
	NoticeSessionExpired  = "Your Spotify session expired. Please log in again."
	NoticeAccessDenied    = "Spotify authorization was not granted."
)

// State is an immutable snapshot of the session. [Update] returns a new value and never
// modifies the slices of an existing one.
type State struct {
	ClientID     string
	Token        string
	SettingsOpen bool
	Genre        models.Genre

	Tracks   []models.Track
	Fetched  bool  // a fetch has succeeded since login
	Pending  int   // history requests in flight
	FetchErr error // last non-expiry fetch failure

	Generation Generation
	Story      string
	StoryErr   error

	Notice string
	Epoch  int
}

// NewState is the state before credentials are loaded.
func NewState() State {
	return State{Genre: models.DefaultGenre, SettingsOpen: true}
}

// Phase derives the session position.
func (s State) Phase() Phase {
	switch {
	case s.Token == "":
		return LoggedOut
	case s.Generation == InProgress:
		return Generating
	case s.Generation == Completed:
		return StoryReady
	case !s.Fetched:
		return NoTracks
	default:
		return TracksLoaded
	}
}

func (s State) LoggedIn() bool { return s.Token != "" }

// Loading reports whether any history request is in flight.
func (s State) Loading() bool { return s.Pending > 0 }

// CanGenerate reports whether a generate request would be accepted.
func (s State) CanGenerate() bool {
	return s.LoggedIn() && len(s.Tracks) > 0 && s.Generation != InProgress
}
