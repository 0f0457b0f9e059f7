package gate

import (
	"fmt"
	"io"
	"strings"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// WriteLMS writes the round summaries in the tab-separated shape the course
// site's gradebook import expects: a quoted header naming each participation
// column with the round's maximum as its total points, then one line per
// student. columnIDs are the site's opaque gradebook column identifiers, one
// per round; a missing id leaves that suffix empty.
func WriteLMS(w io.Writer, rows []models.RoundSummary, columnIDs []string) error {
	rounds := 0
	if len(rows) > 0 {
		rounds = len(rows[0].Rounds)
	}

	maxima := make([]int, rounds)
	for _, row := range rows {
		for i, n := range row.Rounds {
			if n > maxima[i] {
				maxima[i] = n
			}
		}
	}

	headers := make([]string, 0, rounds+1)
	headers = append(headers, `"Username"`)
	for i := 0; i < rounds; i++ {
		id := ""
		if i < len(columnIDs) {
			id = columnIDs[i]
		}
		headers = append(headers,
			fmt.Sprintf(`"Participation %d [Total Pts: %d Score] |%s"`, i+1, maxima[i], id))
	}
	if _, err := io.WriteString(w, strings.Join(headers, "\t")+"\n"); err != nil {
		return err
	}

	for _, row := range rows {
		fields := make([]string, 0, rounds+1)
		fields = append(fields, fmt.Sprintf("%q", row.Username))
		for _, n := range row.Rounds {
			fields = append(fields, fmt.Sprintf("%d", n))
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
