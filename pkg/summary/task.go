// Package summary runs summary generation as a cancellable task that writes
// its result back into a profile store.
package summary

import (
	"context"
	"strings"
	"time"

	"github.com/nikogura/cv-builder/pkg/llm"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds a generation round trip when the caller sets none.
const DefaultTimeout = 60 * time.Second

// ErrSummaryChanged is returned when the summary was edited while generation was pending.
// The edit is kept and the generated text is discarded.
var ErrSummaryChanged = errors.New("summary changed while generation was pending")

// Generator drafts a summary from profile fields.
type Generator interface {
	GenerateSummary(ctx context.Context, req llm.SummaryRequest) (string, error)
}

// Result is the outcome of a task.
type Result struct {
	Text    string `json:"text,omitempty"`
	Applied bool   `json:"applied"`
	Err     error  `json:"-"`
}

// Task is one in-flight generation.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Start snapshots name, title, skills and language from store and begins
// generation in the background. A timeout of zero means DefaultTimeout.
func Start(ctx context.Context, gen Generator, store *profile.Store, timeout time.Duration) (task *Task) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	state := store.Snapshot()
	lang, _ := render.ParseLanguage(state.Language)
	req := llm.SummaryRequest{
		Name:     state.Profile.Name,
		Title:    state.Profile.Title,
		Skills:   state.Profile.Skills,
		Language: lang,
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	task = &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)
		defer cancel()
		task.result = run(taskCtx, gen, store, req, state.Revision)
	}()

	return task
}

func run(ctx context.Context, gen Generator, store *profile.Store, req llm.SummaryRequest, revision uint64) (result Result) {
	text, err := gen.GenerateSummary(ctx, req)
	if err != nil {
		result.Err = errors.Wrap(err, "failed to generate summary")
		return result
	}

	// Cancellation wins over a reply that raced it.
	if ctx.Err() != nil {
		result.Err = errors.Wrap(ctx.Err(), "failed to generate summary")
		return result
	}

	result.Text = strings.TrimSpace(text)
	result.Applied = store.ReplaceSummaryIf(revision, result.Text)
	if !result.Applied {
		result.Err = ErrSummaryChanged
	}

	return result
}

// Cancel aborts the task. The store is left untouched if the reply has not been applied yet.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the task finishes.
func (t *Task) Done() (done <-chan struct{}) {
	done = t.done
	return done
}

// Wait blocks until the task finishes and returns its result.
func (t *Task) Wait() (result Result) {
	<-t.done
	result = t.result
	return result
}

// Generate runs a task to completion on the caller's goroutine.
func Generate(ctx context.Context, gen Generator, store *profile.Store, timeout time.Duration) (result Result) {
	task := Start(ctx, gen, store, timeout)
	result = task.Wait()
	return result
}
