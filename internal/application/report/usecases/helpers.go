package usecases

import (
	"strconv"

	"github.com/civicwatch/civicwatch/internal/shared/errors"
)

// MaxBulkSize caps how many reports one bulk request may touch.
const MaxBulkSize = 100

func formatID(id uint) string {
	return "id " + strconv.FormatUint(uint64(id), 10)
}

// normalizeIDs drops zeros and repeats while keeping the first-seen order.
func normalizeIDs(ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, errors.NewFieldValidationError("ids", "The ids field is required.")
	}
	if len(out) > MaxBulkSize {
		return nil, errors.NewFieldValidationError("ids", "The ids may not have more than 100 items.")
	}
	return out, nil
}
