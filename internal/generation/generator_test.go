package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
)

type fakeModel struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

var trip = models.TravelEvent{
	ID:          "e1",
	Title:       "Rara Lake Ride",
	Description: "Five days on the western highway",
	Date:        "2026-05-10",
	Capacity:    15,
	Deadline:    "2026-04-30",
}

func TestGenerateMinutes(t *testing.T) {
	model := &fakeModel{text: "# Minutes\n- fuel stops agreed"}
	g := NewGenerator(model)

	res := g.GenerateMinutes(context.Background(), trip, models.MOMData{
		EventID:     "e1",
		Agenda:      "Route planning",
		Discussions: "Fuel stops",
		ActionItems: "Book lodges",
		NextSteps:   "Share packing list",
	}, []string{"Asha", "Bikash"})

	require.True(t, res.OK())
	assert.Equal(t, "# Minutes\n- fuel stops agreed", res.TextOr(FallbackMinutes))

	require.Len(t, model.prompts, 1)
	p := model.prompts[0]
	assert.Contains(t, p, "Event: Rara Lake Ride")
	assert.Contains(t, p, "Date: 2026-05-10")
	assert.Contains(t, p, "Agenda: Route planning")
	assert.Contains(t, p, "Participants Count: 2")
	assert.Contains(t, p, "Participants Names: Asha, Bikash")
	assert.Contains(t, p, "Action Items: Book lodges")
	assert.Contains(t, p, "Markdown")
}

func TestGenerateAnnouncement(t *testing.T) {
	model := &fakeModel{text: "🏍️ Ride with us!"}
	g := NewGenerator(model)

	res := g.GenerateAnnouncement(context.Background(), trip)
	require.True(t, res.OK())
	assert.Equal(t, "🏍️ Ride with us!", res.Text)

	p := model.prompts[0]
	assert.Contains(t, p, "Trip Name: Rara Lake Ride")
	assert.Contains(t, p, "Capacity: 15")
	assert.Contains(t, p, "Registration Deadline: 2026-04-30")
	assert.Contains(t, p, "emojis")
}

func TestGenerationFailureIsAResult(t *testing.T) {
	boom := errors.New("quota exceeded")
	tests := []struct {
		name     string
		model    TextModel
		wantErr  error
		run      func(*Generator) Result
		fallback string
	}{
		{
			name:     "minutes model error",
			model:    &fakeModel{err: boom},
			wantErr:  boom,
			run:      func(g *Generator) Result { return g.GenerateMinutes(context.Background(), trip, models.MOMData{}, nil) },
			fallback: FallbackMinutes,
		},
		{
			name:     "announcement empty text",
			model:    &fakeModel{text: "  \n"},
			wantErr:  ErrEmptyResponse,
			run:      func(g *Generator) Result { return g.GenerateAnnouncement(context.Background(), trip) },
			fallback: FallbackAnnouncement,
		},
		{
			name:     "not configured",
			model:    nil,
			wantErr:  ErrNotConfigured,
			run:      func(g *Generator) Result { return g.GenerateAnnouncement(context.Background(), trip) },
			fallback: FallbackAnnouncement,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.run(NewGenerator(tt.model))
			assert.False(t, res.OK())
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.Equal(t, tt.fallback, res.TextOr(tt.fallback))
		})
	}
}
