package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetupJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn", "json"); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	t.Cleanup(func() { _ = Setup(os.Stdout, "info", "text") })

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown 2"`) {
		t.Fatalf("expected json warn line, got %s", out)
	}
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "loud", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Setup(&buf, "info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFatalfLogsAndExits(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "info", "text"); err != nil {
		t.Fatal(err)
	}
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() {
		exit = os.Exit
		_ = Setup(os.Stdout, "info", "text")
	})

	Fatalf("boom: %s", "config")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "boom: config") {
		t.Fatalf("fatal line missing: %s", buf.String())
	}
}
