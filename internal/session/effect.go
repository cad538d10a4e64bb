package session

import (
	"github.com/desertthunder/sonorous/internal/models"
)

// Effect is work requested by [Update] and performed by an [Executor].
type Effect interface{ Name() string }

type SaveClientID struct{ ID string }

type SaveToken struct{ Token string }

type ClearToken struct{}

// ClearFragment removes a consumed callback fragment from the current address.
type ClearFragment struct{}

// Navigate leaves for the authorization page.
type Navigate struct{ URL string }

type FetchHistory struct {
	Token string
	Epoch int
}

type GenerateStory struct {
	Tracks []models.Track
	Genre  models.Genre
	Epoch  int
}

func (SaveClientID) Name() string  { return "save client id" }
func (SaveToken) Name() string     { return "save token" }
func (ClearToken) Name() string    { return "clear token" }
func (ClearFragment) Name() string { return "clear fragment" }
func (Navigate) Name() string      { return "navigate" }
func (FetchHistory) Name() string  { return "fetch history" }
func (GenerateStory) Name() string { return "generate story" }
