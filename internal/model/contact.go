package model

import (
	"strings"
	"time"
)

// ContactMessage represents a message submitted via the contact form.
// IPAddress and UserAgent are kept for abuse tracking only and are never
// serialised.
type ContactMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	ProjectType string    `json:"projectType,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	Timeline    string    `json:"timeline,omitempty"`
	Location    string    `json:"location,omitempty"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	IPAddress   string    `json:"-"`
	UserAgent   string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contact message statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactStatuses lists every canonical contact status.
var ContactStatuses = []string{
	ContactStatusNew,
	ContactStatusRead,
	ContactStatusReplied,
	ContactStatusArchived,
}

// NormalizeContactStatus maps legacy spellings onto the canonical set and
// reports whether the result is a valid status.
func NormalizeContactStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "closed":
		s = ContactStatusArchived
	case "unread":
		s = ContactStatusNew
	}
	return s, contains(ContactStatuses, s)
}

// Enumerated project metadata accepted on the contact form.
var (
	ContactProjectTypes = []string{
		"Residential Design",
		"Commercial Architecture",
		"Interior Design",
		"Landscape Architecture",
		"Planning & Consulting",
		"Renovation/Addition",
		"Other",
	}
	ContactBudgets = []string{
		"Under $100k",
		"$100k - $250k",
		"$250k - $500k",
		"$500k - $1M",
		"$1M - $2M",
		"Over $2M",
		"To be determined",
	}
	ContactTimelines = []string{
		"ASAP",
		"1-3 months",
		"3-6 months",
		"6-12 months",
		"1+ years",
		"Flexible",
	}
)

// IsValidContactProjectType reports whether v is an accepted project type.
func IsValidContactProjectType(v string) bool { return contains(ContactProjectTypes, v) }

// IsValidContactBudget reports whether v is an accepted budget range.
func IsValidContactBudget(v string) bool { return contains(ContactBudgets, v) }

// IsValidContactTimeline reports whether v is an accepted timeline.
func IsValidContactTimeline(v string) bool { return contains(ContactTimelines, v) }

// ContactListOptions carries filter and pagination parameters for listing contact messages.
type ContactListOptions struct {
	// Status filters by canonical status. Empty string means all messages.
	Status string
	Limit  int
	Offset int
}

// ContactReceipt is the deliberately minimal acknowledgement returned to the
// public submitter.
type ContactReceipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}
