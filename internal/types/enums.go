package types

// Role selects which view a session is looking at. It is not a permission set.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// Relation of a family member to the owning member
type Relation string

const (
	RelationSpouse Relation = "Spouse"
	RelationChild  Relation = "Child"
	RelationParent Relation = "Parent"
	RelationOther  Relation = "Other"
)

// Event lifecycle values
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCompleted = "completed"
)

// Store collection names
const (
	CollectionMembers       = "members"
	CollectionEvents        = "events"
	CollectionRegistrations = "registrations"
	CollectionMinutes       = "moms"
)

// Navigation tabs
const (
	TabDashboard = "dashboard"
	TabProfile   = "profile"
	TabAdmin     = "admin"
)

var ValidRelations = []Relation{
	RelationSpouse, RelationChild, RelationParent, RelationOther,
}

var ValidEventStatuses = []string{
	EventDraft, EventPublished, EventCompleted,
}

var ValidTabs = []string{
	TabDashboard, TabProfile, TabAdmin,
}

// Helper functions for validation
func IsValidRole(role Role) bool {
	return role == RoleMember || role == RoleAdmin
}

func IsValidRelation(relation Relation) bool {
	for _, r := range ValidRelations {
		if r == relation {
			return true
		}
	}
	return false
}

func IsValidEventStatus(status string) bool {
	for _, s := range ValidEventStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidTab(tab string) bool {
	for _, t := range ValidTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// CanTransitionEvent reports whether an event may move from one lifecycle
// status to another. Only draft -> published -> completed is defined.
func CanTransitionEvent(from, to string) bool {
	switch from {
	case EventDraft:
		return to == EventPublished
	case EventPublished:
		return to == EventCompleted
	default:
		return false
	}
}
