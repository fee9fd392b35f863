package testutil

import (
	"net/http"
	"testing"
)

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertStatusCodeMismatch(t *testing.T) {
	t.Parallel()

	fakeT := &testing.T{}
	AssertStatusCode(fakeT, http.StatusOK, http.StatusBadRequest)
	if !fakeT.Failed() {
		t.Error("expected failure on mismatched status code")
	}
}
