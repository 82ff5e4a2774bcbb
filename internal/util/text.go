package util

import (
	"strings"

	"github.com/samber/lo"
)

// NormalizeIDs trims ids, drops blanks and removes duplicates, keeping first-seen order
func NormalizeIDs(ids []string) []string {
	trimmed := lo.Map(ids, func(id string, _ int) string {
		return strings.TrimSpace(id)
	})
	return lo.Uniq(lo.Compact(trimmed))
}
