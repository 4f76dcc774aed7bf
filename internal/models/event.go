package models

import "time"

// ============================================
// Event, Registration and Minutes Models
// ============================================

// dateLayout is the ISO calendar date used by event dates and deadlines.
const dateLayout = "2006-01-02"

type TravelEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Capacity    int    `json:"capacity"`
	Deadline    string `json:"deadline"`
	Status      string `json:"status"`
	Image       string `json:"image,omitempty"`
}

// ParsedDate parses Date as either an ISO date or an RFC3339 timestamp.
func (e TravelEvent) ParsedDate() (time.Time, bool) {
	return parseDate(e.Date)
}

// ParsedDeadline parses Deadline the same way as ParsedDate.
func (e TravelEvent) ParsedDeadline() (time.Time, bool) {
	return parseDate(e.Deadline)
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type Registration struct {
	ID                 string   `json:"id"`
	EventID            string   `json:"eventId"`
	MemberID           string   `json:"memberId"`
	AttendingFamilyIDs []string `json:"attendingFamilyIds"`
	SpecialRequests    string   `json:"specialRequests"`
	Timestamp          string   `json:"timestamp"`
}

// MOMData is the structured input of a minutes-of-meeting generation.
type MOMData struct {
	EventID     string `json:"eventId"`
	Agenda      string `json:"agenda"`
	Discussions string `json:"discussions"`
	ActionItems string `json:"actionItems"`
	NextSteps   string `json:"nextSteps"`
}

type SavedMOM struct {
	ID         string `json:"id"`
	EventID    string `json:"eventId"`
	EventTitle string `json:"eventTitle"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// CountRegistrations returns how many registrations reference eventID.
func CountRegistrations(regs []Registration, eventID string) int {
	n := 0
	for _, r := range regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

// RemainingSlots is capacity minus the registrations for the event. It is
// derived on every call and may be negative when the event is overbooked.
func RemainingSlots(event TravelEvent, regs []Registration) int {
	return event.Capacity - CountRegistrations(regs, event.ID)
}
