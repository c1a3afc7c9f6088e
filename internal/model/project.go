package model

import "time"

// Project is an architecture project shown in the portfolio.
type Project struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	FullDescription string    `json:"fullDescription,omitempty"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	Images          []string  `json:"images"`
	ThumbnailImage  string    `json:"thumbnailImage"`
	Location        string    `json:"location"`
	Year            int       `json:"year"`
	Client          string    `json:"client,omitempty"`
	Area            *float64  `json:"area,omitempty"`   // m²
	Budget          *float64  `json:"budget,omitempty"` // USD
	Tags            []string  `json:"tags"`
	Featured        bool      `json:"featured"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Project categories.
const (
	CategoryResidential = "residential"
	CategoryCommercial  = "commercial"
	CategoryInterior    = "interior"
	CategoryLandscape   = "landscape"
	CategoryRenovation  = "renovation"
)

// Project statuses.
const (
	ProjectStatusCompleted  = "completed"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusPlanning   = "planning"
	ProjectStatusOnHold     = "on-hold"
)

// MinProjectYear is the earliest year a project may carry. The latest is five
// years after the current one.
const MinProjectYear = 1900

// ProjectCategories lists every valid category in display order.
var ProjectCategories = []string{
	CategoryResidential,
	CategoryCommercial,
	CategoryInterior,
	CategoryLandscape,
	CategoryRenovation,
}

// ProjectStatuses lists every valid project status.
var ProjectStatuses = []string{
	ProjectStatusCompleted,
	ProjectStatusInProgress,
	ProjectStatusPlanning,
	ProjectStatusOnHold,
}

// IsValidCategory reports whether c is one of ProjectCategories.
func IsValidCategory(c string) bool { return contains(ProjectCategories, c) }

// IsValidProjectStatus reports whether s is one of ProjectStatuses.
func IsValidProjectStatus(s string) bool { return contains(ProjectStatuses, s) }

// ProjectFilter narrows a project listing. Nil or empty fields are ignored.
type ProjectFilter struct {
	Category  string
	Status    string
	Featured  *bool
	Year      *int
	Search    string
	Published *bool // nil matches both
}

// ProjectSort orders a project listing.
type ProjectSort struct {
	Field string // "year" | "createdAt" | "title"
	Desc  bool
}

// DefaultProjectSort is year descending, the order the public site shows.
var DefaultProjectSort = ProjectSort{Field: "year", Desc: true}

// ParseProjectSort converts a "-field" / "field" query value into a ProjectSort.
// Unknown fields fall back to DefaultProjectSort.
func ParseProjectSort(s string) ProjectSort {
	desc := false
	if len(s) > 0 && s[0] == '-' {
		desc = true
		s = s[1:]
	}
	switch s {
	case "year", "createdAt", "title":
		return ProjectSort{Field: s, Desc: desc}
	default:
		return DefaultProjectSort
	}
}

// CategoryCount is one facet entry for the category navigation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
