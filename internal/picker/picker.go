// Package picker resolves operator input into exactly one target student.
package picker

import (
	"math/rand/v2"
	"strings"

	"github.com/nOkuda/participation-tracker/internal/lookup"
	"github.com/nOkuda/participation-tracker/internal/models"
)

type Picker struct {
	index *lookup.Index
	rng   *rand.Rand
}

// New builds a picker over the given index. rng may be nil, in which case the
// shared runtime source is used; tests inject a seeded one.
func New(index *lookup.Index, rng *rand.Rand) *Picker {
	return &Picker{index: index, rng: rng}
}

// Pick resolves query to one student. An empty query draws uniformly at
// random from the current roster; draws are independent, so back-to-back
// empty queries may reselect the same student. A non-empty query goes through
// fuzzy name resolution. Pure read: no state is kept between calls.
func (p *Picker) Pick(query string) (models.Student, error) {
	students := p.index.Students()
	if len(students) == 0 {
		return models.Student{}, lookup.ErrNoStudents
	}
	if strings.TrimSpace(query) == "" {
		return students[p.intN(len(students))], nil
	}
	return p.index.Resolve(query)
}

func (p *Picker) intN(n int) int {
	if p.rng != nil {
		return p.rng.IntN(n)
	}
	return rand.IntN(n)
}
