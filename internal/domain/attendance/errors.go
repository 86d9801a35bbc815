package attendance

import "errors"

// Attendance domain errors
var (
	ErrSnapshotNotLoaded = errors.New("attendance data has not been loaded yet")
	ErrSourceUnavailable = errors.New("attendance data source is unavailable")
	ErrUnknownDay        = errors.New("day must be today or yesterday")
)
