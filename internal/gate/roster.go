// Package gate bridges the course site's file formats: the roster download
// the tracker imports and the gradebook upload it exports.
package gate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// ReadRoster parses a roster file as downloaded from the course site: a
// UTF-16LE tab-separated table whose columns are last name, first name,
// username, and roster id. The header row and any short records are skipped.
func ReadRoster(path string) ([]models.RosterEntry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	rdr := csv.NewReader(transform.NewReader(fh, dec))
	rdr.Comma = '\t'
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	records, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	var entries []models.RosterEntry
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 4 {
			continue
		}
		last := strings.TrimSpace(rec[0])
		first := strings.TrimSpace(rec[1])
		username := strings.TrimSpace(rec[2])
		rosterID := strings.TrimSpace(rec[3])
		if rosterID == "" || username == "" {
			continue
		}
		entries = append(entries, models.RosterEntry{
			RosterID: rosterID,
			Name:     first + " " + last,
			Username: username,
		})
	}
	return entries, nil
}
