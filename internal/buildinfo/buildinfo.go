// Package buildinfo carries the build metadata that /api/status reports so
// a branch operator can tell which server build they are talking to.
package buildinfo

import "time"

// Injected with -ldflags "-X github.com/beachmarket/beachmarketgo/internal/buildinfo.BuildTime=..."
var (
	BuildTime  string // when the server binary was compiled
	CommitTime string // timestamp of the last commit in the build
	CommitHash string // short hash of that commit
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)
