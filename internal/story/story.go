// Package story turns a listening history into a prompt and asks a language model to write
// a short story from it.
package story

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonorous/internal/models"
	"github.com/desertthunder/sonorous/internal/shared"
)

const (
	// Fallback is returned when the model answers with no text.
	Fallback = "The stars were silent. No story could be told today."

	// FailureMessage is the user-facing text of a failed generation.
	FailureMessage = "Failed to conjure the story. The AI spirits are restless."
)

// Sampling parameters for every story.
const (
	Temperature float32 = 0.8
	TopP        float32 = 0.95
	TopK        float32 = 40
)

// Completer is the language model seam.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// Generator writes stories through a [Completer].
type Generator struct {
	completer Completer
	model     string
	logger    *log.Logger
}

// NewGenerator returns a generator that asks model for every story.
func NewGenerator(completer Completer, model string, logger *log.Logger) *Generator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Generator{completer: completer, model: model, logger: logger}
}

// Generate makes exactly one completion call for tracks, given most recent first.
//
// Empty model output becomes [Fallback]. On failure the cause is logged and the returned
// error wraps [shared.ErrGenerationFailed] with [FailureMessage]. An empty track list is not
// rejected here.
func (g *Generator) Generate(ctx context.Context, tracks []models.Track, genre models.Genre) (string, error) {
	req := models.CompletionRequest{
		Model:       g.model,
		Prompt:      BuildPrompt(tracks, genre),
		Temperature: Temperature,
		TopP:        TopP,
		TopK:        TopK,
	}

	text, err := g.completer.Complete(ctx, req)
	if err != nil {
		g.logger.Error("story generation failed", "genre", genre, "tracks", len(tracks), "error", err)
		return "", &Error{cause: err}
	}

	if text == "" {
		return Fallback, nil
	}
	return text, nil
}

// Error is a failed generation. Its message is always [FailureMessage].
type Error struct {
	cause error
}

func (e *Error) Error() string { return FailureMessage }

// Unwrap exposes both [shared.ErrGenerationFailed] and the underlying cause.
func (e *Error) Unwrap() []error { return []error{shared.ErrGenerationFailed, e.cause} }

// BuildPrompt lists tracks oldest first and asks for a story in genre that treats each one
// as a beat and ends on the last. tracks is not modified.
func BuildPrompt(tracks []models.Track, genre models.Genre) string {
	chronological := slices.Clone(tracks)
	slices.Reverse(chronological)

	lines := make([]string, len(chronological))
	for i, t := range chronological {
		lines[i] = fmt.Sprintf("%d. \"%s\" by %s", i+1, t.Name, t.Artist)
	}

	var b strings.Builder
	b.WriteString("I have a list of songs I recently listened to, in chronological order from first to most recent.\n")
	fmt.Fprintf(&b, "Please write a %s story where each song represents a key plot point, emotional beat, or chapter in the narrative.\n\n", genre)
	b.WriteString("The story should feel cohesive and the transitions between tracks should make sense narratively.\n")
	b.WriteString("Incorporate the vibe and titles of the songs into the prose naturally.\n\n")
	fmt.Fprintf(&b, "Genre: %s\n", genre)
	b.WriteString("Sequence of Tracks:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "- Write in the style of a %s novel.\n", genre)
	b.WriteString("- Mention the songs or their themes clearly.\n")
	b.WriteString("- End with a satisfying conclusion based on the final song.\n")
	b.WriteString("- Use Markdown for bolding and structure.\n")
	return b.String()
}
