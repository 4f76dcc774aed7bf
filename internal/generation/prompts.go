package generation

import (
	"fmt"
	"strings"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
)

func minutesPrompt(event models.TravelEvent, mom models.MOMData, participants []string) string {
	var b strings.Builder
	b.WriteString("Generate a professional \"Minutes of Meeting\" (MOM) document for this travel community event.\n\n")
	fmt.Fprintf(&b, "Event: %s\n", event.Title)
	fmt.Fprintf(&b, "Date: %s\n", event.Date)
	fmt.Fprintf(&b, "Agenda: %s\n", mom.Agenda)
	fmt.Fprintf(&b, "Participants Count: %d\n", len(participants))
	fmt.Fprintf(&b, "Participants Names: %s\n", strings.Join(participants, ", "))
	fmt.Fprintf(&b, "Discussions: %s\n", mom.Discussions)
	fmt.Fprintf(&b, "Action Items: %s\n", mom.ActionItems)
	fmt.Fprintf(&b, "Next Steps: %s\n\n", mom.NextSteps)
	b.WriteString("Format the output as well-structured Markdown with clear headers and bullet points. ")
	b.WriteString("Keep a friendly but professional community tone.")
	return b.String()
}

func announcementPrompt(event models.TravelEvent) string {
	var b strings.Builder
	b.WriteString("Create a catchy, informative WhatsApp broadcast announcement for this travel community trip.\n\n")
	fmt.Fprintf(&b, "Trip Name: %s\n", event.Title)
	fmt.Fprintf(&b, "Date: %s\n", event.Date)
	fmt.Fprintf(&b, "Description: %s\n", event.Description)
	fmt.Fprintf(&b, "Capacity: %d\n", event.Capacity)
	fmt.Fprintf(&b, "Registration Deadline: %s\n\n", event.Deadline)
	b.WriteString("Make it engaging with emojis and clear calls to action, in the style common to Indian community groups.")
	return b.String()
}
