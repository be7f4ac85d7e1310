package models

import "strconv"

func itoa(v int) string {
	return strconv.Itoa(v)
}

func ftoaV(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ftoa(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s, for optional string fields.
func String(s string) *string {
	return &s
}
