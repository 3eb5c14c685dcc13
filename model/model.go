package model

import "time"

// State is a step of the per-invocation patch workflow.
type State string

const (
	StateIdle     State = "idle"
	StateLocated  State = "located"
	StateDiffOnly State = "diff-only"
	StateBackedUp State = "backed-up"
	StatePatched  State = "patched"
	StateVerified State = "verified"
	StateFailed   State = "failed"
)

// PatchTask describes a single replacement of a target file.
type PatchTask struct {
	TargetPath string
	// Replacement is the full content the target should end up with.
	Replacement string
	// ReplacementName is used for display only.
	ReplacementName string
	DiffOnly        bool
	Backup          bool
}

// PatchStatus reports what happened to the target file.
type PatchStatus string

const (
	PatchApplied   PatchStatus = "applied"
	PatchUnchanged PatchStatus = "unchanged"
	PatchPreviewed PatchStatus = "previewed"
	PatchFailed    PatchStatus = "failed"
)

// VerifyStatus reports the outcome of the post-patch test run.
type VerifyStatus string

const (
	VerifyPassed  VerifyStatus = "passed"
	VerifyFailed  VerifyStatus = "failed"
	VerifySkipped VerifyStatus = "skipped"
)

// Summary holds the results of an invocation for display.
type Summary struct {
	TargetPath   string
	Source       string
	State        State
	Patch        PatchStatus
	BackupPath   string
	Added        int
	Removed      int
	Verify       VerifyStatus
	TestDir      string
	TestExitCode int
	TestDuration time.Duration
	Message      string
	Warnings     []string
}

// Applied reports whether the target file was rewritten.
func (s Summary) Applied() bool {
	return s.Patch == PatchApplied
}
