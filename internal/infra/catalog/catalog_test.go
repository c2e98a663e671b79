package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/moldplan/moldplan/internal/domain"
)

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFleet_DigestsAreStableAndDistinct(t *testing.T) {
	dir := t.TempDir()
	machinesPath := writeJSON(t, dir, "machines.json", []domain.Machine{
		{ID: "M1", Name: "M1", Group: domain.GroupSmall, Tonnage: 100},
	})
	moldsPath := writeJSON(t, dir, "molds.json", []domain.Mold{
		{ID: "m1", Name: "m1", Group: domain.GroupSmall, Tonnage: 80},
	})

	fleet, err := LoadFleet(machinesPath, moldsPath)
	if err != nil {
		t.Fatalf("LoadFleet() error = %v", err)
	}
	if fleet.MachinesDigest == "" || fleet.MoldsDigest == "" {
		t.Fatal("expected non-empty digests")
	}
	if fleet.MachinesDigest == fleet.MoldsDigest {
		t.Error("machines and molds digests should differ for different content")
	}

	fleet2, err := LoadFleet(machinesPath, moldsPath)
	if err != nil {
		t.Fatalf("LoadFleet() second load error = %v", err)
	}
	if fleet.MachinesDigest != fleet2.MachinesDigest {
		t.Error("digest should be stable across identical loads")
	}
}

func TestFleet_ValidateFlagsUnmountableMolds(t *testing.T) {
	fleet := Fleet{
		Machines: []domain.Machine{{ID: "M1", Group: domain.GroupSmall, Tonnage: 100}},
		Molds: []domain.Mold{
			{ID: "ok", Group: domain.GroupSmall, Tonnage: 80},
			{ID: "too-heavy", Group: domain.GroupSmall, Tonnage: 500},
			{ID: "wrong-group", Group: domain.GroupLarge, Tonnage: 50},
		},
	}

	issues := fleet.Validate()
	if len(issues) != 2 {
		t.Fatalf("issues = %+v, want 2", issues)
	}
	ids := map[string]bool{}
	for _, iss := range issues {
		ids[iss.MoldID] = true
	}
	if !ids["too-heavy"] || !ids["wrong-group"] {
		t.Errorf("expected issues for too-heavy and wrong-group, got %+v", issues)
	}
}
