package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	Logf("compiled dancer=%s frames=%d", "2_feng", 3)

	if len(lines) != 1 || lines[0] != "compiled dancer=2_feng frames=3" {
		t.Errorf("captured %q", lines)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(lines) != 1 {
		t.Errorf("no-op logger forwarded a line: %q", lines)
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
}
