package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rickgao/botrelay/internal/model"
	"github.com/rickgao/botrelay/internal/router"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := `
instance:
  id: test-bot
store:
  driver: sqlite
  sqlite:
    dsn: sqlite://` + filepath.Join(dir, "botrelay.db") + `
` + extra
	path := filepath.Join(dir, "botrelay.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "botrelay dev (unknown) built unknown\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestCLI_Routes(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := runCLI(t, "routes", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("routes list error = %v", err)
	}
	if !strings.Contains(out, "No routes defined.") {
		t.Errorf("routes list on empty store = %q", out)
	}

	out, err = runCLI(t, "routes", "add", "aopriv(*)", "aoorg", "--two-way", "-c", cfg)
	if err != nil {
		t.Fatalf("routes add error = %v", err)
	}
	if !strings.Contains(out, "added: aopriv(*) <-> aoorg") {
		t.Errorf("routes add output = %q", out)
	}
	id := strings.Fields(out)[1]

	out, err = runCLI(t, "routes", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("routes list error = %v", err)
	}
	if !strings.Contains(out, id+"  aopriv(*) <-> aoorg") {
		t.Errorf("routes list = %q, want route %s", out, id)
	}

	// Duplicate routes are rejected
	if _, err := runCLI(t, "routes", "add", "aopriv(*)", "aoorg", "--two-way", "-c", cfg); err == nil {
		t.Error("duplicate routes add should fail")
	}

	out, err = runCLI(t, "routes", "remove", id[:8], "-c", cfg)
	if err != nil {
		t.Fatalf("routes remove error = %v", err)
	}
	if !strings.Contains(out, "Route "+id+" removed") {
		t.Errorf("routes remove output = %q", out)
	}

	out, _ = runCLI(t, "routes", "list", "-c", cfg)
	if !strings.Contains(out, "No routes defined.") {
		t.Errorf("routes list after remove = %q", out)
	}
}

func TestCLI_RoutesAddRejectsInvalid(t *testing.T) {
	cfg := writeConfig(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown kind", args: []string{"routes", "add", "smoke", "aoorg"}},
		{name: "bad filter", args: []string{"routes", "add", "aopriv", "aoorg", "--filter", "text +"}},
		{name: "missing destination", args: []string{"routes", "add", "aopriv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, append(tt.args, "-c", cfg)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCLI_SeedsRoutesFromConfig(t *testing.T) {
	cfg := writeConfig(t, `
routes:
  - source: aopriv(*)
    destination: aoorg
  - source: relay(nadynet)
    destination: aoorg
    two_way: true
`)

	out, err := runCLI(t, "routes", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("routes list error = %v", err)
	}
	if !strings.Contains(out, "aopriv(*) -> aoorg") || !strings.Contains(out, "relay(nadynet) <-> aoorg") {
		t.Errorf("routes list = %q, want both seeded routes", out)
	}

	// Seeding happens once; a second run does not duplicate.
	out, _ = runCLI(t, "routes", "list", "-c", cfg)
	if n := strings.Count(out, "aopriv(*) -> aoorg"); n != 1 {
		t.Errorf("seeded route listed %d times, want 1", n)
	}
}

func TestCLI_Formats(t *testing.T) {
	cfg := writeConfig(t, "")

	if _, err := runCLI(t, "formats", "set", "aopriv(MyBot)", "--format", "Guest", "-c", cfg); err != nil {
		t.Fatalf("formats set error = %v", err)
	}
	if _, err := runCLI(t, "formats", "set", "aotell", "--hidden", "-c", cfg); err != nil {
		t.Fatalf("formats set --hidden error = %v", err)
	}
	if _, err := runCLI(t, "formats", "set", "aoorg", "--format", "%s %s", "-c", cfg); err == nil {
		t.Errorf("formats set with two %%s should fail")
	}

	out, err := runCLI(t, "formats", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("formats list error = %v", err)
	}
	for _, want := range []string{"aopriv(MyBot)", `"Guest"`, "aotell", "hidden", "relay"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats list = %q, missing %q", out, want)
		}
	}

	if _, err := runCLI(t, "formats", "remove", "aotell", "-c", cfg); err != nil {
		t.Fatalf("formats remove error = %v", err)
	}
	if _, err := runCLI(t, "formats", "remove", "aotell", "-c", cfg); err == nil {
		t.Error("removing a missing format should fail")
	}
}

func TestCLI_Colors(t *testing.T) {
	cfg := writeConfig(t, "")

	if _, err := runCLI(t, "colors", "set", "aoorg", "--tag", "5ef1ff", "--text", "89D2E8", "-c", cfg); err != nil {
		t.Fatalf("colors set error = %v", err)
	}
	if _, err := runCLI(t, "colors", "set", "aoorg", "--tag", "red", "-c", cfg); err == nil {
		t.Error("colors set with a non-hex color should fail")
	}

	out, err := runCLI(t, "colors", "list", "-c", cfg)
	if err != nil {
		t.Fatalf("colors list error = %v", err)
	}
	if !strings.Contains(out, "tag=5EF1FF") || !strings.Contains(out, "text=89D2E8") {
		t.Errorf("colors list = %q", out)
	}

	if _, err := runCLI(t, "colors", "remove", "aoorg", "-c", cfg); err != nil {
		t.Fatalf("colors remove error = %v", err)
	}
}

func TestCLI_MissingConfig(t *testing.T) {
	if _, err := runCLI(t, "routes", "list", "-c", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestFindRoute(t *testing.T) {
	routes := []model.Route{
		{ID: "0a1b2c3d-0000", Source: "aopriv", Destination: "aoorg"},
		{ID: "0a1b9999-0000", Source: "web", Destination: "aoorg"},
		{ID: "ffff0000-0000", Source: "relay", Destination: "aoorg"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr bool
	}{
		{name: "full id", ref: "ffff0000-0000", wantID: "ffff0000-0000"},
		{name: "unique prefix", ref: "0a1b2c", wantID: "0a1b2c3d-0000"},
		{name: "ambiguous prefix", ref: "0a1b", wantErr: true},
		{name: "prefix too short", ref: "fff", wantErr: true},
		{name: "unknown", ref: "deadbeef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findRoute(routes, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findRoute(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got.ID != tt.wantID {
				t.Errorf("findRoute(%q) = %s, want %s", tt.ref, got.ID, tt.wantID)
			}
		})
	}

	if _, err := findRoute(routes, "deadbeef"); !errors.Is(err, router.ErrRouteNotFound) {
		t.Errorf("unknown ref error = %v, want ErrRouteNotFound", err)
	}
}
