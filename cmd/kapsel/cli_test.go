package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/index"
	"github.com/kailabs/kapsel/internal/ops"
)

// setupTestDB creates a temporary database and index for testing.
func setupTestDB(t *testing.T) (*sql.DB, *index.Index) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, index.New()
}

// runApp runs a CLI command capturing stdout.
func runApp(t *testing.T, database *sql.DB, idx *index.Index, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(database, idx, config.DefaultConfig())

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"kapsel"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

func TestSplitCommas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single", "foo", []string{"foo"}},
		{"multiple", "foo,bar,baz", []string{"foo", "bar", "baz"}},
		{"spaces trimmed", " foo , bar ", []string{"foo", "bar"}},
		{"empty parts filtered", "foo,,bar,", []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitCommas(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d parts, got %d", len(tt.expected), len(result))
			}
			for i, p := range result {
				if p != tt.expected[i] {
					t.Errorf("part[%d] = %q, want %q", i, p, tt.expected[i])
				}
			}
		})
	}
}

func TestCLICreate(t *testing.T) {
	database, idx := setupTestDB(t)

	out, err := runApp(t, database, idx,
		"create", "--summary=CLI capsule", "--confidence=0.8",
		"--domain=ai", "--discipline=ml", "--tags=cli,test")
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}

	var c capsule.Capsule
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if c.ID == "" {
		t.Error("expected non-empty ID")
	}
	if c.CoreInsight.Summary != "CLI capsule" {
		t.Errorf("summary = %q", c.CoreInsight.Summary)
	}
	if len(c.Context.Tags) != 2 {
		t.Errorf("tags = %v", c.Context.Tags)
	}
}

func TestCLIGetAndList(t *testing.T) {
	database, idx := setupTestDB(t)

	created, err := ops.Create(database, idx, ops.CreateInput{
		Summary: "stored", Confidence: 0.5, Domain: "ai", Discipline: "ml",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := runApp(t, database, idx, "get", created.ID)
	if err != nil {
		t.Fatalf("get command failed: %v", err)
	}
	var got capsule.Capsule
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("parse get output: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q", got.ID)
	}

	out, err = runApp(t, database, idx, "list")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	var listed ops.ListOutput
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("parse list output: %v", err)
	}
	if listed.Pagination.Total != 1 {
		t.Errorf("Total = %d", listed.Pagination.Total)
	}
}

func TestCLICollideAndVerify(t *testing.T) {
	database, idx := setupTestDB(t)

	a, err := ops.Create(database, idx, ops.CreateInput{
		Summary: "a", Confidence: 0.8, Domain: "ai", Discipline: "ml",
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ops.Create(database, idx, ops.CreateInput{
		Summary: "b", Confidence: 0.6, Domain: "philosophy", Discipline: "ethics",
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, database, idx, "collide", a.ID, b.ID)
	if err != nil {
		t.Fatalf("collide command failed: %v", err)
	}
	var col capsule.Collision
	if err := json.Unmarshal([]byte(out), &col); err != nil {
		t.Fatalf("parse collide output: %v", err)
	}
	if col.Type != capsule.CollisionCrossDomain {
		t.Errorf("Type = %q", col.Type)
	}

	out, err = runApp(t, database, idx, "verify", a.ID, "verified")
	if err != nil {
		t.Fatalf("verify command failed: %v", err)
	}
	var vOut ops.VerifyOutput
	if err := json.Unmarshal([]byte(out), &vOut); err != nil {
		t.Fatalf("parse verify output: %v", err)
	}
	if vOut.VerificationStatus != capsule.VerificationVerified {
		t.Errorf("status = %q", vOut.VerificationStatus)
	}
}

func TestCLIReproduce(t *testing.T) {
	database, idx := setupTestDB(t)

	out, err := runApp(t, database, idx,
		"reproduce", "--text=Eureka", "--analysis=Displacement as measurement", "--domain=physics")
	if err != nil {
		t.Fatalf("reproduce command failed: %v", err)
	}

	var c capsule.Capsule
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if c.CoreInsight.Summary != "Historical insight from physics" {
		t.Errorf("summary = %q", c.CoreInsight.Summary)
	}
	if c.Context.Discipline != "historical_studies" {
		t.Errorf("discipline = %q", c.Context.Discipline)
	}
	if c.CoreInsight.Confidence != ops.ReproductionConfidence {
		t.Errorf("confidence = %g", c.CoreInsight.Confidence)
	}
}

func TestCLIGet_MissingArg(t *testing.T) {
	database, idx := setupTestDB(t)

	_, err := runApp(t, database, idx, "get")
	if err == nil {
		t.Error("get without id should fail")
	}
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"kapsel"}, false},
		{[]string{"kapsel", "create"}, true},
		{[]string{"kapsel", "status"}, true},
		{[]string{"kapsel", "reproduce"}, true},
		{[]string{"kapsel", "--help"}, true},
		{[]string{"kapsel", "-v"}, true},
		{[]string{"kapsel", "unknowncmd"}, false},
	}

	for _, tt := range tests {
		os.Args = tt.args
		if got := isCLIMode(); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
