// Package testutil provides shared HTTP test helpers for the API and CLI
// packages.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewJSONRequest creates a test request carrying body as JSON. An empty
// body sends no body at all.
func NewJSONRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes r into v or fails the test.
func DecodeJSON(t testing.TB, r io.Reader, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// ErrorMessage decodes an {"err": ...} body and returns the message.
func ErrorMessage(t testing.TB, r io.Reader) string {
	t.Helper()
	var body struct {
		Err *string `json:"err"`
	}
	DecodeJSON(t, r, &body)
	if body.Err == nil {
		t.Fatal(`error body has no "err" field`)
	}
	return *body.Err
}

// ByteArray decodes a JSON array of numbers into raw bytes, failing on any
// element outside 0..255.
func ByteArray(t testing.TB, r io.Reader) []byte {
	t.Helper()
	var nums []int
	DecodeJSON(t, r, &nums)
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			t.Fatalf("element %d = %d is not a byte", i, n)
		}
		out[i] = byte(n)
	}
	return out
}
