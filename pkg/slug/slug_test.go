package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Modern Glass House":            "modern-glass-house",
		"  Urban   Loft Renovation  ":   "urban-loft-renovation",
		"Café & Bar — Phase II":         "cafe-bar-phase-ii",
		"Corporate HQ (2023)":           "corporate-hq-2023",
		"already-a-slug":                "already-a-slug",
		"--Leading and trailing--":      "leading-and-trailing",
		"Multiple --- hyphens":          "multiple-hyphens",
		"Tab\tand\nnewline":             "tab-and-newline",
		"!!!":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), "Make(%q)", in)
	}
}

func TestMake_Idempotent(t *testing.T) {
	titles := []string{
		"Modern Glass House",
		"Café & Bar — Phase II",
		" -x- ",
		"Résidence Öko 2024",
		"a  -  b",
	}
	for _, title := range titles {
		once := Make(title)
		assert.Equal(t, once, Make(once), "slug of %q is not stable", title)
	}
}

func TestMake_Deterministic(t *testing.T) {
	assert.Equal(t, Make("Lakeside Pavilion"), Make("Lakeside Pavilion"))
	assert.Equal(t, Make("Lakeside Pavilion"), Make("lakeside   PAVILION"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("modern-glass-house"))
	assert.False(t, Valid("Modern Glass House"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("-edge-"))
}
