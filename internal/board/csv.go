package board

import (
	"strings"

	"github.com/mlebreton/veille-aap/internal/models"
)

// csvHeader is the fixed export header; downstream spreadsheets rely on the
// exact column set and the semicolon delimiter.
const csvHeader = "Titre;Type;Catégorie;Axe;Territoire;Deadline;Statut;Responsable"

// RenderCSV renders entries as semicolon-delimited CSV. Fields containing a
// delimiter, quote, or newline are double-quote-wrapped with internal
// quotes doubled.
func RenderCSV(entries []models.Entry) string {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	for _, e := range entries {
		opp := e.Opportunity
		fields := []string{
			opp.Title, opp.Type, opp.Category, opp.Axis, opp.Territory,
			opp.Deadline, e.Annotation.Status, e.Annotation.Owner,
		}
		escaped := make([]string, len(fields))
		for i, f := range fields {
			escaped[i] = csvField(f)
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Join(escaped, ";"))
	}
	return sb.String()
}

func csvField(s string) string {
	if strings.ContainsAny(s, ";\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// ExportCSV renders the full current merged view.
func (b *Board) ExportCSV() string {
	return RenderCSV(b.CurrentMergedView())
}
