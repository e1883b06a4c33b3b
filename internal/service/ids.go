package service

import (
	"context"
	"strconv"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// assignIDs settles the id of every generated case. An id echoed by the model
// is kept when it is unused in the batch and lies within len(cases) above the
// highest existing id; all other cases take consecutive values from the
// issue's sequencer.
func (s *generationService) assignIDs(ctx context.Context, scope string, existing, cases []model.TestCase) error {
	floor := model.MaxNumericID(existing)

	taken := make(map[int64]bool, len(cases))
	keep := make([]bool, len(cases))
	highest := floor
	missing := 0
	for i, tc := range cases {
		n, ok := model.NumericID(tc.ID)
		if ok && n > floor && n-floor <= int64(len(cases)) && !taken[n] {
			keep[i] = true
			taken[n] = true
			highest = max(highest, n)
			continue
		}
		missing++
	}

	next, err := s.sequencer.Reserve(ctx, scope, highest, missing)
	if err != nil {
		return err
	}

	for i := range cases {
		if keep[i] {
			continue
		}
		cases[i].ID = strconv.FormatInt(next, 10)
		next++
	}
	return nil
}
