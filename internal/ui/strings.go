package ui

import "strings"

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// clip is truncate that yields nothing when there is no room.
func clip(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return truncate(value, limit)
}

// oneLine collapses whitespace runs, including newlines, to single spaces.
func oneLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return maxInt(lo, minInt(v, hi))
}
