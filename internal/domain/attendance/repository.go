package attendance

import (
	"context"

	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
)

// Source fetches the raw three-table payload from the spreadsheet side.
// Implementations make a single attempt and never retry.
type Source interface {
	Fetch(ctx context.Context) (sheet.Payload, error)
}

// SnapshotStore holds the single current snapshot.
type SnapshotStore interface {
	// Current returns the latest snapshot, or false before the first load.
	Current() (*Snapshot, bool)

	// Replace swaps in a new snapshot as one unit.
	Replace(snapshot *Snapshot)
}

// SnapshotPublisher is told about every snapshot that replaces the current one.
type SnapshotPublisher interface {
	PublishSnapshot(info SnapshotInfo)
}
