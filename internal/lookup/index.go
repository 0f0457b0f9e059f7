// Package lookup maps free-text input to the closest-matching student name.
// The index is a disposable projection of the student table: it is rebuilt
// from the store on open and after any roster change, never mutated in place.
package lookup

import (
	"errors"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// ErrNoStudents is returned when a lookup or pick runs against an empty roster.
var ErrNoStudents = errors.New("no students in roster")

type Index struct {
	students []models.Student
}

func New() *Index {
	return &Index{}
}

// Rebuild replaces the indexed roster. Students are held in ascending id
// order so that score ties resolve to the lowest id deterministically.
func (ix *Index) Rebuild(students []models.Student) {
	ix.students = make([]models.Student, len(students))
	copy(ix.students, students)
	sort.Slice(ix.students, func(i, j int) bool {
		return ix.students[i].ID < ix.students[j].ID
	})
}

// Students returns the indexed roster in id order. The caller must not
// modify the returned slice.
func (ix *Index) Students() []models.Student {
	return ix.students
}

func (ix *Index) Len() int {
	return len(ix.students)
}

// Resolve returns the student whose name scores best against query. The score
// is the smallest case-folded edit distance between the query and the full
// display name or any single name token, so "bob" finds "Bob Smith" exactly.
// Repeated calls with the same roster and query return the same student.
func (ix *Index) Resolve(query string) (models.Student, error) {
	if len(ix.students) == 0 {
		return models.Student{}, ErrNoStudents
	}

	q := strings.ToLower(strings.TrimSpace(query))
	best := ix.students[0]
	bestScore := nameScore(q, best.Name)
	for _, s := range ix.students[1:] {
		if score := nameScore(q, s.Name); score < bestScore {
			best, bestScore = s, score
		}
	}
	return best, nil
}

func nameScore(query, name string) int {
	folded := strings.ToLower(name)
	score := levenshtein.ComputeDistance(query, folded)
	for _, token := range strings.Fields(folded) {
		if d := levenshtein.ComputeDistance(query, token); d < score {
			score = d
		}
	}
	return score
}
