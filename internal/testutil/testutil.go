// Package testutil provides shared test helpers for the HTTP handler
// tests.
package testutil

import "testing"

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}
