package http

import (
	"strings"
	"unicode"

	"expensebook/internal/core"
)

// maxInputLen caps every form field.
const maxInputLen = 200

// sanitizeInput removes control characters, trims whitespace and caps length.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxInputLen {
		s = string(r[:maxInputLen])
	}
	return s
}

// categoryDisplay is how an expense's category is shown, with the
// "Uncategorized" fallback for ids that no longer exist.
type categoryDisplay struct {
	Name  string
	Color string
	Icon  core.Icon
}

func resolveCategory(id string, categories []core.Category) categoryDisplay {
	c, ok := core.CategoryByID(id, categories)
	if !ok {
		return categoryDisplay{Name: "Uncategorized", Color: core.DefaultColor}
	}
	color := c.Color
	if color == "" {
		color = core.DefaultColor
	}
	return categoryDisplay{Name: c.Name, Color: color, Icon: c.Icon}
}
