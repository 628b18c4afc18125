package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/topomap/pkg/observability"
	"github.com/matzehuels/topomap/pkg/pipeline"
)

const sampleCSV = `Timestamp,Source,Address,Parent,Role,RSSI,ParentRSSI
2024-03-01 10:00:01,2,1,1,PARENT,-40,-40
2024-03-01 10:00:02,3,2,2,PARENT,-55,-55
2024-03-01 10:00:03,3,1,2,NEIGHBOUR,-71,-55
`

func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	c.Out = &out
	return c, &out
}

func TestRootCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in -short mode")
	}
	c, out := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "network.csv", sampleCSV)
	outDir := filepath.Join(dir, "maps")

	root := c.RootCommand()
	root.SetArgs([]string{"1", "-i", input, "-o", outDir, "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("output dir has %d files, want archive and latest", len(entries))
	}
	if _, err := os.Stat(filepath.Join(outDir, pipeline.DefaultLatestName)); err != nil {
		t.Errorf("latest figure missing: %v", err)
	}
	for _, want := range []string{"Topology map for sink 1", pipeline.DefaultLatestName, "3 nodes"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestRootCommandArgs(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected an error without a sink argument")
	}
}

func TestRootCommandMissingInput(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()

	root := c.RootCommand()
	root.SetArgs([]string{"1", "-i", filepath.Join(dir, "nope.csv"), "-o", filepath.Join(dir, "out")})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(statErr) {
		t.Error("output directory created despite failure")
	}
}

func TestRootCommandFailureIsNotLogged(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	c.Out = &out
	dir := t.TempDir()

	root := c.RootCommand()
	root.SetArgs([]string{"1", "-i", filepath.Join(dir, "nope.csv"), "-o", filepath.Join(dir, "out")})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected an error for a missing input file")
	}
	if strings.Contains(logs.String(), "failed") {
		t.Errorf("failure logged before the returned error is reported:\n%s", logs.String())
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output on failure: %q", out.String())
	}
}

func TestWatchCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in -short mode")
	}
	c, _ := testCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "network.csv", sampleCSV)
	latest := filepath.Join(dir, "maps", pipeline.DefaultLatestName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := c.RootCommand()
	root.SetArgs([]string{"watch", "1", "-i", input, "-o", filepath.Join(dir, "maps"), "--no-cache", "--debounce", "50ms"})
	errc := make(chan error, 1)
	go func() { errc <- root.ExecuteContext(ctx) }()

	deadline := time.Now().Add(30 * time.Second)
	for {
		if _, err := os.Stat(latest); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial render did not produce the latest figure")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("watch returned %v after cancel, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
