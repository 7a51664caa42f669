// Package storage persists the live ConfigSnapshot to survive a restart,
// the implementer's choice recorded in DESIGN.md for spec.md §9's
// persistence Open Question: the full snapshot, written after every
// accepted write, not a per-resource-type subset.
package storage

import "github.com/lhanjian/yarhs/pkg/domain"

// SnapshotStore persists and restores a whole domain.ConfigSnapshot. Save is
// called synchronously after every accepted xDS POST and file-watch reload
// when server.enable_state_persistence is set; Load is called once at
// startup, and a snapshot it returns is used in place of the config file's
// own values.
type SnapshotStore interface {
	Save(snap *domain.ConfigSnapshot) error
	Load() (*domain.ConfigSnapshot, error)
}
