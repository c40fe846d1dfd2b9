package models

import "strings"

// containsFold reports whether s case-insensitively contains substrLower,
// which must already be lower-cased by the caller.
func containsFold(s, substrLower string) bool {
	return strings.Contains(strings.ToLower(s), substrLower)
}
