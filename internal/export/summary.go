package export

import (
	"strconv"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// SummarySheet shapes the cached point snapshot into a worksheet.
func SummarySheet(rows []models.SummaryRow) SheetSpec {
	spec := SheetSpec{
		Title:  "Summary",
		Header: []string{"ID", "Name", "Username", "Points", "Stale"},
	}
	for _, r := range rows {
		stale := ""
		if r.Stale {
			stale = "stale"
		}
		spec.Rows = append(spec.Rows, []string{
			strconv.FormatInt(r.StudentID, 10),
			r.Name,
			r.Username,
			strconv.Itoa(r.Points),
			stale,
		})
	}
	return spec
}

// RoundsSheet shapes per-round satisfactory counts into a worksheet.
func RoundsSheet(rows []models.RoundSummary) SheetSpec {
	rounds := 0
	if len(rows) > 0 {
		rounds = len(rows[0].Rounds)
	}
	spec := SheetSpec{Title: "Rounds", Header: []string{"Username"}}
	for i := 1; i <= rounds; i++ {
		spec.Header = append(spec.Header, "Participation "+strconv.Itoa(i))
	}
	for _, r := range rows {
		row := []string{r.Username}
		for _, n := range r.Rounds {
			row = append(row, strconv.Itoa(n))
		}
		spec.Rows = append(spec.Rows, row)
	}
	return spec
}
