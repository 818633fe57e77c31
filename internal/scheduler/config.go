package scheduler

import "time"

// Config controls scheduler intervals and which jobs run. The zero
// value runs every job hourly.
type Config struct {
	RunInterval      time.Duration
	DisableSweep     bool
	DisableSnapshots bool
	// SnapshotDay is the day of the month on which the previous
	// month's risk snapshots are generated.
	SnapshotDay int
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = time.Hour
	}
	if c.SnapshotDay < 1 || c.SnapshotDay > 28 {
		c.SnapshotDay = 1
	}
	return c
}
