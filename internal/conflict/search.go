package conflict

import (
	"time"

	"github.com/javiermolinar/studydesk/internal/task"
)

// Search policy defaults.
const (
	DefaultBuffer      = 5 * time.Minute
	DefaultMaxAttempts = 100
)

// Options configures the next-available-slot search.
type Options struct {
	// Buffer is the gap left after the latest conflicting task's end.
	Buffer time.Duration
	// MaxAttempts bounds the number of detector runs.
	MaxAttempts int
}

// DefaultOptions returns the default search policy.
func DefaultOptions() Options {
	return Options{
		Buffer:      DefaultBuffer,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Searcher finds free slots using a fixed search policy.
// A Searcher holds no mutable state and is safe for concurrent use.
type Searcher struct {
	opts Options
}

// NewSearcher creates a Searcher. A negative buffer is treated as zero and
// a non-positive attempt bound selects DefaultMaxAttempts.
func NewSearcher(opts Options) *Searcher {
	if opts.Buffer < 0 {
		opts.Buffer = 0
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Searcher{opts: opts}
}

// Options returns the policy in effect.
func (s *Searcher) Options() Options {
	return s.opts
}

// Suggestion is the outcome of a slot search.
type Suggestion struct {
	Start time.Time
	// Attempts is the number of detector runs performed.
	Attempts int
	// Exhausted is true when the attempt bound was hit while conflicts
	// remained. Start is then a best-effort answer that may still conflict.
	Exhausted bool
}

// Moved reports whether the suggestion differs from the preferred start.
func (s Suggestion) Moved(preferred time.Time) bool {
	return !s.Start.Equal(preferred)
}

// SuggestSlot searches forward from preferred for the first start at which
// a task of the given duration overlaps nothing.
//
// Each conflicting step advances the candidate to the latest conflicting
// end plus the buffer. The candidate never moves backwards. When the
// attempt bound is reached the last candidate is returned with Exhausted
// set; this is not an error.
func (s *Searcher) SuggestSlot(tasks []*task.Task, preferred time.Time, duration int) (Suggestion, error) {
	return s.suggest(tasks, preferred, duration, "")
}

// SuggestSlotExcluding is SuggestSlot ignoring the task with excludeID,
// for moving a task without it blocking itself.
func (s *Searcher) SuggestSlotExcluding(tasks []*task.Task, preferred time.Time, duration int, excludeID string) (Suggestion, error) {
	return s.suggest(tasks, preferred, duration, excludeID)
}

func (s *Searcher) suggest(tasks []*task.Task, preferred time.Time, duration int, excludeID string) (Suggestion, error) {
	if err := validateCandidate(preferred, duration); err != nil {
		return Suggestion{}, err
	}

	// Filter once; the snapshot does not change between attempts.
	open := openTasks(tasks, excludeID)

	candidate := preferred
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		conflicts := detect(open, task.NewInterval(candidate, duration), "")
		if len(conflicts) == 0 {
			return Suggestion{Start: candidate, Attempts: attempt}, nil
		}
		next := LatestEnd(conflicts).Add(s.opts.Buffer)
		if next.After(candidate) {
			candidate = next
		}
	}

	return Suggestion{
		Start:     candidate,
		Attempts:  s.opts.MaxAttempts,
		Exhausted: true,
	}, nil
}

// openTasks returns the tasks that can take part in a conflict, without
// touching the caller's slice.
func openTasks(tasks []*task.Task, excludeID string) []*task.Task {
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || !t.IsOpen() {
			continue
		}
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		result = append(result, t)
	}
	return result
}

var defaultSearcher = NewSearcher(DefaultOptions())

// SuggestSlot runs the search with the default policy.
func SuggestSlot(tasks []*task.Task, preferred time.Time, duration int) (Suggestion, error) {
	return defaultSearcher.SuggestSlot(tasks, preferred, duration)
}
