package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanScriptPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"idle", "scripts/idle.tengo"},
		{"idle.tengo", "scripts/idle.tengo"},
		{"scripts/idle", "scripts/idle.tengo"},
		{"prefabs/scripts/idle.tengo", "scripts/idle.tengo"},
		{"", ""},
	}
	for _, c := range cases {
		if got := cleanScriptPath(c.in); got != c.want {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func withDiskRoot(t *testing.T, dir string) {
	t.Helper()
	old := DiskRoot
	DiskRoot = dir
	t.Cleanup(func() { DiskRoot = old })
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	withDiskRoot(t, dir)

	embedded, err := Load(VehicleSpecFile)
	if err != nil {
		t.Fatalf("Load embedded: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, VehicleSpecFile), []byte("name: disk_car\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := Load(VehicleSpecFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) == string(embedded) {
		t.Fatalf("disk copy should win over the embedded file")
	}
	spec, err := LoadVehicleSpec(VehicleSpecFile)
	if err != nil {
		t.Fatalf("LoadVehicleSpec: %v", err)
	}
	if spec.Name != "disk_car" {
		t.Fatalf("name = %q", spec.Name)
	}
	if got := Name(filepath.Join(dir, "scripts", "idle.tengo")); got != "scripts/idle.tengo" {
		t.Fatalf("Name = %q", got)
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	withDiskRoot(t, dir)

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "car.yaml"), []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for {
		select {
		case c := <-w.Events:
			if c.Name == "notes.txt" {
				t.Fatalf("non-prefab file should be ignored")
			}
			if c.Name != "car.yaml" || c.Script {
				t.Fatalf("unexpected change %+v", c)
			}
			return
		case <-timeout:
			t.Fatalf("no change reported")
		}
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := w.Poll(); len(got) != 0 {
		t.Fatalf("closed watcher returned %v", got)
	}
}
