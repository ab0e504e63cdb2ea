package testutil

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLoadedBefore checks that dep appears strictly before dependent in
// order.
func AssertLoadedBefore(t *testing.T, order []string, dep, dependent string) {
	t.Helper()

	i, j := slices.Index(order, dep), slices.Index(order, dependent)
	require.NotEqual(t, -1, i, "%q was not loaded; order: %v", dep, order)
	require.NotEqual(t, -1, j, "%q was not loaded; order: %v", dependent, order)
	require.Less(t, i, j, "%q must load before %q; order: %v", dep, dependent, order)
}

// CountLogLines returns how many log lines contain every one of the given
// substrings.
func CountLogLines(logs string, substrings ...string) int {
	n := 0
	for _, line := range strings.Split(logs, "\n") {
		match := line != ""
		for _, s := range substrings {
			if !strings.Contains(line, s) {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}
