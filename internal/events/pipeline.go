// Package events defines the generation pipeline events published on the
// event bus.
package events

import "time"

// RunStart is emitted when a CLI command begins.
type RunStart struct {
	Command string
	Root    string
}

// RunFinish is emitted when a CLI command ends.
type RunFinish struct {
	Command  string
	Err      error
	Duration time.Duration
}

// ScanStart is emitted before source discovery and descriptor building.
type ScanStart struct {
	Root string
}

// ScanFinish is emitted after descriptor building.
type ScanFinish struct {
	Root     string
	Packages int
	Parts    int
	Err      error
	Duration time.Duration
}

// ComposeStart is emitted before merging one composite.
type ComposeStart struct {
	Composite string
	Parts     []string
}

// ComposeFinish is emitted after merging one composite.
type ComposeFinish struct {
	Composite  string
	Resolvers  int
	Violations int
	Duration   time.Duration
}

// RenderStart is emitted before one generated file is rendered and written.
type RenderStart struct {
	Composite string // "" for a parts capability file
	File      string
}

// RenderFinish is emitted after one generated file is rendered and written.
type RenderFinish struct {
	Composite string
	File      string
	Bytes     int
	Err       error
	Duration  time.Duration
}
