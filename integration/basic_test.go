//go:build basic

package integration

import (
	"path/filepath"
	"strings"
	"testing"
)

func examplePath(name string) string {
	return filepath.Join("..", "examples", name)
}

func TestEfficiencyCommand(t *testing.T) {
	out, err := runBinary(t, "efficiency", examplePath("toy.json"), "--super", "--no-color")
	if err != nil {
		t.Fatalf("efficiency failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Extreme efficiencies:") {
		t.Errorf("missing header in output:\n%s", out)
	}
	for _, unit := range []string{"A", "B", "C", "D", "E"} {
		if !strings.Contains(out, unit) {
			t.Errorf("missing unit %s in output:\n%s", unit, out)
		}
	}
}

func TestRanksCommandJSON(t *testing.T) {
	out, err := runBinary(t, "ranks", examplePath("toy.json"), "--output", "json")
	if err != nil {
		t.Fatalf("ranks failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"min"`) || !strings.Contains(out, `"max"`) {
		t.Errorf("expected JSON rank bounds in output:\n%s", out)
	}
}

func TestSmaaCommandDeterminism(t *testing.T) {
	args := []string{"smaa", examplePath("toy.json"), "--samples", "100", "--bins", "5", "--seed", "5", "--workers", "1", "--output", "csv"}
	first, err := runBinary(t, args...)
	if err != nil {
		t.Fatalf("smaa failed: %v\n%s", err, first)
	}
	second, err := runBinary(t, args...)
	if err != nil {
		t.Fatalf("smaa failed: %v\n%s", err, second)
	}
	if first != second {
		t.Errorf("same seed produced different output:\n%s\nvs\n%s", first, second)
	}
}

func TestPreferencesCommandHierarchical(t *testing.T) {
	out, err := runBinary(t, "preferences", examplePath("healthcare.json"), "--node", "comprehensive_analysis", "--no-color")
	if err != nil {
		t.Fatalf("preferences failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Pairwise efficiency preference relations:") {
		t.Errorf("missing header in output:\n%s", out)
	}
}

func TestPeoiCommandImprecise(t *testing.T) {
	out, err := runBinary(t, "peoi", examplePath("robots.json"), "--samples", "50", "--workers", "2", "--output", "csv")
	if err != nil {
		t.Fatalf("peoi failed: %v\n%s", err, out)
	}
	if len(strings.Split(strings.TrimSpace(out), "\n")) < 28 {
		t.Errorf("expected a 27x27 matrix plus header:\n%s", out)
	}
}

func TestRunsStatusWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	out, err := runBinary(t, "efficiency", examplePath("toy.json"),
		"--store-backend", "sqlite", "--store-db-connect", dbPath, "--output", "csv")
	if err != nil {
		t.Fatalf("efficiency with store failed: %v\n%s", err, out)
	}
	out, err = runBinary(t, "runs", "status", "--store-backend", "sqlite", "--store-db-connect", dbPath)
	if err != nil {
		t.Fatalf("runs status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Runs:    1") {
		t.Errorf("expected one tracked run:\n%s", out)
	}
}
