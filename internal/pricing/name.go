package pricing

import (
	"fmt"
	"strings"

	"github.com/domeo/doors/internal/domain"
)

// BuildNameKP composes the display name of a position for customer-facing
// documents: model, then an optional parenthesized clause list with
// dimensions, color and edge finish.
//
// The clauses are collected first and joined at the end, so the
// parenthesis is opened iff at least one clause exists and is always
// closed.
func BuildNameKP(p domain.Position) string {
	var parts []string
	if p.Width != nil && p.Height != nil {
		parts = append(parts, fmt.Sprintf("%d×%d", *p.Width, *p.Height))
	}
	if p.Color != "" {
		parts = append(parts, p.Color)
	}
	if p.Edge == "да" {
		edge := "Кромка"
		if p.EdgeNote != "" {
			edge += ": " + p.EdgeNote
		}
		parts = append(parts, edge)
	}
	if len(parts) == 0 {
		return p.Model
	}
	return p.Model + " (" + strings.Join(parts, ", ") + ")"
}
