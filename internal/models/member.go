package models

import (
	"strings"

	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// ============================================
// Member Models
// ============================================

type FamilyMember struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Relation   types.Relation `json:"relation"`
	Age        int            `json:"age"`
	BloodGroup string         `json:"bloodGroup"`
}

type Member struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	Password      string         `json:"password,omitempty"`
	BloodGroup    string         `json:"bloodGroup"`
	DOB           string         `json:"dob"`
	Birthday      string         `json:"birthday"`
	Location      string         `json:"location"`
	FamilyMembers []FamilyMember `json:"familyMembers"`
}

// Clone returns a copy that shares no slices with m.
func (m Member) Clone() Member {
	c := m
	if m.FamilyMembers != nil {
		c.FamilyMembers = make([]FamilyMember, len(m.FamilyMembers))
		copy(c.FamilyMembers, m.FamilyMembers)
	}
	return c
}

// FirstName is the greeting name shown on the dashboard.
func (m Member) FirstName() string {
	name := strings.TrimSpace(m.Name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// HasFamilyMember reports whether id belongs to one of m's family members.
func (m Member) HasFamilyMember(id string) bool {
	for _, f := range m.FamilyMembers {
		if f.ID == id {
			return true
		}
	}
	return false
}
