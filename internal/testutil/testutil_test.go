package testutil

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

// recordingTB captures failures instead of failing the real test. Fatal
// calls unwind through a panic that fails() recovers.
type recordingTB struct {
	testing.TB
	failed bool
}

type fatalUnwind struct{}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...interface{}) {
	r.failed = true
}

func (r *recordingTB) Fatalf(format string, args ...interface{}) {
	r.failed = true
	panic(fatalUnwind{})
}

func (r *recordingTB) Fatal(args ...interface{}) {
	r.Fatalf("%s", fmt.Sprint(args...))
}

// fails reports whether fn flagged a failure on its TB.
func fails(fn func(tb testing.TB)) (failed bool) {
	r := &recordingTB{}
	defer func() {
		if v := recover(); v != nil {
			if _, ok := v.(fatalUnwind); !ok {
				panic(v)
			}
		}
		failed = r.failed
	}()
	fn(r)
	return r.failed
}

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)

	if !fails(func(tb testing.TB) { AssertStatusCode(tb, http.StatusNotFound, http.StatusOK) }) {
		t.Fatal("expected a failure on mismatched status codes")
	}
}

func TestNewJSONRequest(t *testing.T) {
	t.Parallel()

	req := NewJSONRequest(http.MethodPost, "/api/frame_dat", `{"dancer":"2_feng"}`)
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if req.URL.Path != "/api/frame_dat" {
		t.Errorf("path = %s, want /api/frame_dat", req.URL.Path)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q, want application/json", got)
	}

	req = NewJSONRequest(http.MethodGet, "/healthz", "")
	if req.Header.Get("Content-Type") != "" {
		t.Error("bodyless request should carry no content type")
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	if got := ErrorMessage(t, strings.NewReader(`{"err":"Dancer not found."}`)); got != "Dancer not found." {
		t.Errorf("ErrorMessage = %q", got)
	}

	if !fails(func(tb testing.TB) { ErrorMessage(tb, strings.NewReader(`{"error":"x"}`)) }) {
		t.Fatal(`expected a failure without an "err" field`)
	}
}

func TestByteArray(t *testing.T) {
	t.Parallel()

	got := ByteArray(t, strings.NewReader(`[0, 1, 255]`))
	if string(got) != "\x00\x01\xff" {
		t.Errorf("ByteArray = %v", got)
	}

	if !fails(func(tb testing.TB) { ByteArray(tb, strings.NewReader(`[256]`)) }) {
		t.Fatal("expected a failure on a non-byte element")
	}
}
