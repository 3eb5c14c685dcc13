package patcher

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sokinpui/hyfix/internal/diff"
	"github.com/sokinpui/hyfix/internal/fs"
	"github.com/sokinpui/hyfix/model"
)

// Outcome is the result of applying a PatchTask.
type Outcome struct {
	State      model.State
	Changed    bool
	Diff       diff.Result
	BackupPath string
	BeforeSHA  string
	AfterSHA   string
}

// Patcher replaces a target file with new content.
type Patcher struct {
	logger *zap.Logger
	backup func(target string) (string, error)
	write  func(path string, data []byte) error
}

// New creates a Patcher backed by the real filesystem.
func New(logger *zap.Logger) *Patcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Patcher{
		logger: logger,
		backup: fs.Backup,
		write:  fs.WriteAtomic,
	}
}

// OriginalLabel and PatchedLabel name the two sides of the rendered diff.
func OriginalLabel(target string) string { return target + " (original)" }
func PatchedLabel(target string) string  { return target + " (patched)" }

// Apply runs the workflow for task:
//
//	Located -> DiffOnly
//	Located -> BackedUp -> Patched
//
// On error the returned Outcome has StateFailed and the target is unchanged.
func (p *Patcher) Apply(task model.PatchTask) (Outcome, error) {
	out := Outcome{State: model.StateIdle}
	log := p.logger.With(zap.String("target", task.TargetPath))

	original, err := fs.ReadText(task.TargetPath)
	if err != nil {
		out.State = model.StateFailed
		return out, model.NewError(model.ErrTargetNotFound, task.TargetPath, err)
	}
	out.State = model.StateLocated
	out.BeforeSHA = fs.HashString(original)

	d, err := diff.Compute(original, task.Replacement, OriginalLabel(task.TargetPath), PatchedLabel(task.TargetPath))
	if err != nil {
		out.State = model.StateFailed
		return out, fmt.Errorf("failed to compute diff: %w", err)
	}
	out.Diff = d
	out.Changed = !d.Empty()
	log.Debug("computed diff",
		zap.Bool("changed", out.Changed),
		zap.Int("added", d.Stats.Added),
		zap.Int("removed", d.Stats.Removed),
		zap.String("sha256", out.BeforeSHA))

	if task.DiffOnly {
		out.State = model.StateDiffOnly
		out.AfterSHA = out.BeforeSHA
		return out, nil
	}

	if !out.Changed {
		out.State = model.StatePatched
		out.AfterSHA = out.BeforeSHA
		log.Debug("content identical, nothing to write")
		return out, nil
	}

	if task.Backup {
		backupPath, err := p.backup(task.TargetPath)
		if err != nil {
			out.State = model.StateFailed
			return out, model.NewError(model.ErrBackupFailed, fs.BackupPath(task.TargetPath), err).
				WithHint("The original file was left untouched.")
		}
		out.BackupPath = backupPath
		log.Debug("backup written", zap.String("backup", backupPath))
	}
	out.State = model.StateBackedUp

	if err := p.write(task.TargetPath, []byte(task.Replacement)); err != nil {
		out.State = model.StateFailed
		return out, model.NewError(model.ErrWriteFailed, task.TargetPath, err)
	}
	out.State = model.StatePatched
	out.AfterSHA, err = fs.GetFileSHA256(task.TargetPath)
	if err != nil {
		log.Debug("could not hash rewritten target", zap.Error(err))
		out.AfterSHA = fs.HashString(task.Replacement)
	}
	log.Debug("target rewritten",
		zap.String("source", task.ReplacementName),
		zap.String("sha256", out.AfterSHA))
	return out, nil
}
