package storage

import "reputation-monitor/models"

// SnapshotWriter is the interface any snapshot backend must satisfy.
// Write fully replaces whatever the backend held before.
type SnapshotWriter interface {
	Write(snapshot *models.Snapshot) error
}

// SnapshotReader loads a whole snapshot.
type SnapshotReader interface {
	Read() (*models.Snapshot, error)
}
