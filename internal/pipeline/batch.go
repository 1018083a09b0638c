package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
)

// DefaultPattern selects the documents a batch processes.
const DefaultPattern = "*.pdf"

// FileError records a document that failed during a batch.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Summary reports a finished batch.
type Summary struct {
	Processed int
	Failed    []*FileError
}

// Err joins the per-file failures, or returns nil when every file succeeded.
func (s Summary) Err() error {
	errs := make([]error, len(s.Failed))
	for i, f := range s.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Batch processes every matching document in a directory, one at a time,
// in lexical filename order.
type Batch struct {
	proc *Processor
	out  io.Writer
	log  *slog.Logger

	// Pattern is the glob matched inside the directory; DefaultPattern when empty.
	Pattern string
	// FailFast aborts on the first failing document instead of continuing.
	FailFast bool
}

func NewBatch(proc *Processor, out io.Writer, log *slog.Logger) *Batch {
	return &Batch{proc: proc, out: out, log: log}
}

// Discover lists the matching documents in dir, sorted.
func (b *Batch) Discover(dir string) ([]string, error) {
	pattern := b.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes the directory and prints each result to the batch output.
// A failed document is logged and skipped unless FailFast is set, in which
// case the batch stops and returns its error. Cancellation is checked
// between documents.
func (b *Batch) Run(ctx context.Context, dir string) (Summary, error) {
	var sum Summary
	files, err := b.Discover(dir)
	if err != nil {
		return sum, err
	}
	b.log.Info("batch started", "dir", dir, "files", len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := filepath.Base(path)

		res, err := b.proc.ProcessFile(ctx, path)
		if err != nil {
			fe := &FileError{File: name, Err: err}
			if b.FailFast {
				return sum, fe
			}
			b.log.Error("document failed, continuing", "file", name, "error", err)
			sum.Failed = append(sum.Failed, fe)
			continue
		}
		if err := res.Print(b.out); err != nil {
			return sum, fmt.Errorf("write report: %w", err)
		}
		sum.Processed++
	}

	b.log.Info("batch finished", "processed", sum.Processed, "failed", len(sum.Failed))
	return sum, nil
}
