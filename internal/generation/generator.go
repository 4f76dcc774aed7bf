package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
)

const (
	FallbackMinutes      = "Error generating MOM document. Please try again."
	FallbackAnnouncement = "Join our next trip! Check the app for details."
)

var (
	ErrNotConfigured = errors.New("text generation is not configured")
	ErrEmptyResponse = errors.New("model returned no text")
)

// TextModel turns a prompt into text with a single request.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is either generated text or the reason there is none.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool { return r.Err == nil }

// TextOr returns the generated text, or fallback on failure.
func (r Result) TextOr(fallback string) string {
	if r.Err != nil {
		return fallback
	}
	return r.Text
}

// Generator writes meeting minutes and trip announcements. Calls are not
// retried and never stream.
type Generator struct {
	model TextModel
}

func NewGenerator(model TextModel) *Generator {
	if model == nil {
		model = disabledModel{}
	}
	return &Generator{model: model}
}

func (g *Generator) GenerateMinutes(ctx context.Context, event models.TravelEvent, mom models.MOMData, participants []string) Result {
	return g.run(ctx, "minutes", minutesPrompt(event, mom, participants))
}

func (g *Generator) GenerateAnnouncement(ctx context.Context, event models.TravelEvent) Result {
	return g.run(ctx, "announcement", announcementPrompt(event))
}

func (g *Generator) run(ctx context.Context, kind, prompt string) Result {
	text, err := g.model.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		log.Error().Err(err).Msgf("[Generation] %s generation failed", kind)
		return Result{Err: fmt.Errorf("generate %s: %w", kind, err)}
	}
	return Result{Text: text}
}

type disabledModel struct{}

func (disabledModel) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
