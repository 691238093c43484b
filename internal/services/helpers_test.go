package services

import "strconv"

func intRef(v int) *int { return &v }

func floatRef(v float64) *float64 { return &v }

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatIntPtr(v *int) string {
	if v == nil {
		return "nil"
	}
	return strconv.Itoa(*v)
}
