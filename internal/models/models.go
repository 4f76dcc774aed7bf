package models

import "github.com/Marga-Ghale/sanchari-backend/internal/types"

// ============================================
// Session DTOs
// ============================================

type SessionTokenResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UnlockAdminRequest struct {
	Secret string `json:"secret" binding:"required"`
}

type SetRoleRequest struct {
	Role types.Role `json:"role" binding:"required,oneof=MEMBER ADMIN"`
}

type SetTabRequest struct {
	Tab string `json:"tab" binding:"required,oneof=dashboard profile admin"`
}

type SessionResponse struct {
	Role          types.Role      `json:"role"`
	ActiveTab     string          `json:"activeTab"`
	Authorized    bool            `json:"authorized"`
	AdminUnlocked bool            `json:"adminUnlocked"`
	CurrentMember *MemberResponse `json:"currentMember,omitempty"`
}

// ============================================
// Member DTOs
// ============================================

// MemberResponse is a Member without its credential.
type MemberResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	BloodGroup    string         `json:"bloodGroup"`
	DOB           string         `json:"dob"`
	Birthday      string         `json:"birthday"`
	Location      string         `json:"location"`
	FamilyMembers []FamilyMember `json:"familyMembers"`
}

type UpdateProfileRequest struct {
	Name          *string         `json:"name,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	BloodGroup    *string         `json:"bloodGroup,omitempty"`
	DOB           *string         `json:"dob,omitempty"`
	Birthday      *string         `json:"birthday,omitempty"`
	Location      *string         `json:"location,omitempty"`
	FamilyMembers *[]FamilyMember `json:"familyMembers,omitempty"`
}

type CreateMemberRequest struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name" binding:"required,min=2"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email" binding:"required,email"`
	Password      string         `json:"password" binding:"required,min=6"`
	BloodGroup    string         `json:"bloodGroup"`
	DOB           string         `json:"dob"`
	Birthday      string         `json:"birthday"`
	Location      string         `json:"location"`
	FamilyMembers []FamilyMember `json:"familyMembers"`
}

// ============================================
// Event DTOs
// ============================================

type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	Capacity    int    `json:"capacity" binding:"gte=0"`
	Deadline    string `json:"deadline"`
	Status      string `json:"status,omitempty" binding:"omitempty,oneof=draft published completed"`
	Image       string `json:"image,omitempty"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published completed"`
}

// EventCardResponse is a published event as shown on the member dashboard.
type EventCardResponse struct {
	TravelEvent
	Registered     int `json:"registered"`
	RemainingSlots int `json:"remainingSlots"`
}

type DashboardResponse struct {
	Greeting string              `json:"greeting"`
	Events   []EventCardResponse `json:"events"`
}

type StatsResponse struct {
	TotalRiders    int `json:"totalRiders"`
	ActiveBookings int `json:"activeBookings"`
}

// ============================================
// Registration DTOs
// ============================================

type RequestJoinRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

type ConfirmJoinRequest struct {
	AttendingFamilyIDs []string `json:"attendingFamilyIds"`
	SpecialRequests    string   `json:"specialRequests"`
}

type PendingRegistrationResponse struct {
	Status    string       `json:"status"`
	Event     *TravelEvent `json:"event,omitempty"`
	LastError string       `json:"lastError,omitempty"`
}

// ============================================
// Generation DTOs
// ============================================

type GenerateMinutesRequest struct {
	Agenda       string   `json:"agenda" binding:"required"`
	Discussions  string   `json:"discussions"`
	ActionItems  string   `json:"actionItems"`
	NextSteps    string   `json:"nextSteps"`
	Participants []string `json:"participants,omitempty"`
}

type GeneratedTextResponse struct {
	Content  string    `json:"content"`
	Fallback bool      `json:"fallback"`
	Saved    *SavedMOM `json:"saved,omitempty"`
}

// ToMemberResponse strips the credential from a member.
func ToMemberResponse(m Member) MemberResponse {
	family := m.FamilyMembers
	if family == nil {
		family = []FamilyMember{}
	}
	return MemberResponse{
		ID:            m.ID,
		Name:          m.Name,
		Phone:         m.Phone,
		Email:         m.Email,
		BloodGroup:    m.BloodGroup,
		DOB:           m.DOB,
		Birthday:      m.Birthday,
		Location:      m.Location,
		FamilyMembers: family,
	}
}
