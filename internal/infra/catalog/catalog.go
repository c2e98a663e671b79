// Package catalog loads and validates the fleet of machines and molds a
// plan is optimized against. Catalog files are plain JSON; each load is
// content-hashed so callers can report which exact file contents they
// loaded (the CLI's catalog validate command prints both digests).
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/moldplan/moldplan/internal/domain"
)

// Fleet is a loaded, content-addressed set of machines and molds.
type Fleet struct {
	Machines []domain.Machine
	Molds    []domain.Mold

	MachinesDigest string
	MoldsDigest    string
}

// LoadMachines reads a JSON array of machines from path.
func LoadMachines(path string) ([]domain.Machine, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read machines file: %w", err)
	}
	var machines []domain.Machine
	if err := json.Unmarshal(raw, &machines); err != nil {
		return nil, "", fmt.Errorf("parse machines file: %w", err)
	}
	return machines, digest(raw), nil
}

// LoadMolds reads a JSON array of molds from path.
func LoadMolds(path string) ([]domain.Mold, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read molds file: %w", err)
	}
	var molds []domain.Mold
	if err := json.Unmarshal(raw, &molds); err != nil {
		return nil, "", fmt.Errorf("parse molds file: %w", err)
	}
	return molds, digest(raw), nil
}

// LoadFleet loads both catalog files into one Fleet.
func LoadFleet(machinesPath, moldsPath string) (Fleet, error) {
	machines, mDigest, err := LoadMachines(machinesPath)
	if err != nil {
		return Fleet{}, err
	}
	molds, dDigest, err := LoadMolds(moldsPath)
	if err != nil {
		return Fleet{}, err
	}
	return Fleet{
		Machines:       machines,
		Molds:          molds,
		MachinesDigest: mDigest,
		MoldsDigest:    dDigest,
	}, nil
}

func digest(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// Issue is one problem Validate found. It never blocks scheduling by
// itself — callers decide whether an Issue is fatal for their use case.
type Issue struct {
	MoldID string
	Reason string
}

// Validate reports molds that no machine in the fleet could ever mount —
// wrong group, or tonnage exceeding every machine of that group. Such a
// mold's components will always end up unmet; surfacing this before a GA
// run saves a wasted optimization pass.
func (f Fleet) Validate() []Issue {
	maxTonnagePerGroup := make(map[domain.Group]int)
	for _, m := range f.Machines {
		if m.Tonnage > maxTonnagePerGroup[m.Group] {
			maxTonnagePerGroup[m.Group] = m.Tonnage
		}
	}

	var issues []Issue
	for _, mold := range f.Molds {
		maxTonnage, groupExists := maxTonnagePerGroup[mold.Group]
		switch {
		case !groupExists:
			issues = append(issues, Issue{MoldID: mold.ID, Reason: fmt.Sprintf("no machine in group %q", mold.Group)})
		case mold.Tonnage > maxTonnage:
			issues = append(issues, Issue{MoldID: mold.ID, Reason: fmt.Sprintf("tonnage %d exceeds largest %q machine (%d)", mold.Tonnage, mold.Group, maxTonnage)})
		}
	}
	return issues
}
