package utils

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

type KindCount struct {
	Kind  string
	Count uint64
}

// SortKindsByCount sorts message kinds by count (descending), then by name (ascending)
func SortKindsByCount(byKind map[string]uint64) []KindCount {
	kindCounts := make([]KindCount, 0, len(byKind))
	for kind, count := range byKind {
		kindCounts = append(kindCounts, KindCount{Kind: kind, Count: count})
	}

	sort.Slice(kindCounts, func(i, j int) bool {
		if kindCounts[i].Count == kindCounts[j].Count {
			return kindCounts[i].Kind < kindCounts[j].Kind
		}
		return kindCounts[i].Count > kindCounts[j].Count
	})

	return kindCounts
}

// FormatNumber formats a number with comma separators for readability
func FormatNumber(n uint64) string {
	str := strconv.FormatUint(n, 10)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

// FormatAge renders how long ago t was: milliseconds under a second, whole
// seconds otherwise. A zero t renders as "never".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := now.Sub(t)
	if age < 0 {
		age = 0
	}
	if age < time.Second {
		return fmt.Sprintf("%dms", age.Milliseconds())
	}
	return fmt.Sprintf("%.0fs", math.Round(age.Seconds()))
}
