package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/metrics"
	"github.com/lanternworks/boardman/internal/store"
)

// DefaultMaxItems bounds a classification batch when the caller does not.
const DefaultMaxItems = 20

// Lister supplies candidate items from the remote tracker.
type Lister interface {
	ListIssues(ctx context.Context, state string, limit int) ([]board.Item, error)
}

// Classifier produces advisory facet suggestions for one item.
type Classifier interface {
	NeedsTriage(it board.Item) bool
	Classify(ctx context.Context, it board.Item) ([]string, error)
}

// StateStore is the local record the executor reads and updates. The
// sqlite store satisfies it directly.
type StateStore interface {
	GetItem(ctx context.Context, id int) (*board.Item, error)
	ListItems(ctx context.Context, f store.ItemFilter) ([]board.Item, error)
	SetItemState(ctx context.Context, id int, state string) error
}

// Mutator applies a state change to the remote tracker.
type Mutator interface {
	SetItemState(ctx context.Context, id int, from, to string) error
}

// Config wires an Executor. Recorder and Logger may be nil.
type Config struct {
	Lister     Lister
	Classifier Classifier
	Store      StateStore
	Mutator    Mutator
	States     board.States
	Recorder   *metrics.Recorder
	Logger     *slog.Logger
}

// Executor runs bulk operations over board items. It holds no global
// state; construct one per server with its collaborators injected.
type Executor struct {
	lister     Lister
	classifier Classifier
	store      StateStore
	mutator    Mutator
	states     board.States
	recorder   *metrics.Recorder
	logger     *slog.Logger
}

func New(cfg Config) *Executor {
	states := cfg.States
	if len(states) == 0 {
		states = board.DefaultStates()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder(logger, 0)
	}
	return &Executor{
		lister:     cfg.Lister,
		classifier: cfg.Classifier,
		store:      cfg.Store,
		mutator:    cfg.Mutator,
		states:     states,
		recorder:   recorder,
		logger:     logger.With("component", "batch"),
	}
}

// BulkClassify classifies up to maxItems items that are missing required
// facets. Suggestions are advisory: nothing is written to the tracker or
// the store. An empty stateFilter considers every state.
func (e *Executor) BulkClassify(ctx context.Context, maxItems int, stateFilter string) (*ClassifyReport, error) {
	return metrics.Track(e.recorder, "bulk_classify", func() (*ClassifyReport, error) {
		return e.bulkClassify(ctx, maxItems, stateFilter)
	})
}

func (e *Executor) bulkClassify(ctx context.Context, maxItems int, stateFilter string) (*ClassifyReport, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if stateFilter != "" && !e.states.Valid(stateFilter) {
		return nil, fmt.Errorf("unknown board state %q (expected one of %s)",
			stateFilter, strings.Join(e.states, ", "))
	}

	candidates := e.resolveCandidates(ctx, maxItems, stateFilter)
	if len(candidates) > maxItems {
		candidates = candidates[:maxItems]
	}

	report := &ClassifyReport{Results: make([]ClassifyResult, 0, len(candidates))}
	for _, it := range candidates {
		report.add(e.classifyOne(ctx, it))
	}
	report.finish()
	return report, nil
}

// resolveCandidates prefers the remote lister, over-fetching so the
// missing-facet filter still yields a full batch. A remote failure is
// not fatal: the local store serves as fallback, unfiltered by facets.
func (e *Executor) resolveCandidates(ctx context.Context, maxItems int, stateFilter string) []board.Item {
	remote, err := e.lister.ListIssues(ctx, stateFilter, maxItems*2)
	if err == nil {
		var out []board.Item
		for _, it := range remote {
			if e.classifier.NeedsTriage(it) {
				out = append(out, it)
			}
		}
		return out
	}
	e.logger.Warn("remote lister failed, falling back to local store", "error", err)

	f := store.ItemFilter{Limit: maxItems}
	if stateFilter != "" {
		f.State = &stateFilter
	}
	local, lerr := e.store.ListItems(ctx, f)
	if lerr != nil {
		e.logger.Error("local fallback failed", "error", lerr)
		return nil
	}
	return local
}

func (e *Executor) classifyOne(ctx context.Context, it board.Item) ClassifyResult {
	suggestions, err := e.classifier.Classify(ctx, it)
	if err != nil {
		e.logger.Warn("classify failed", "item", it.ID, "error", err)
		return ClassifyErrorResult(it, err)
	}
	if len(suggestions) == 0 {
		return AlreadyClassifiedResult(it)
	}
	return TriagedResult(it, suggestions)
}

// BulkTransition moves the given items to targetState. Items are looked
// up in the local store; unknown items and failed moves become error
// results. With dryRun set the mutator is never invoked and moved counts
// describe what would happen. Duplicate ids are processed independently.
func (e *Executor) BulkTransition(ctx context.Context, itemIDs []int, targetState string, dryRun bool) (*TransitionReport, error) {
	return metrics.Track(e.recorder, "bulk_transition", func() (*TransitionReport, error) {
		return e.bulkTransition(ctx, itemIDs, targetState, dryRun)
	})
}

func (e *Executor) bulkTransition(ctx context.Context, itemIDs []int, targetState string, dryRun bool) (*TransitionReport, error) {
	// A target outside the board can produce no meaningful per-item
	// results; reject it before touching the first item.
	if !e.states.Valid(targetState) {
		return nil, fmt.Errorf("unknown board state %q (expected one of %s)",
			targetState, strings.Join(e.states, ", "))
	}

	report := &TransitionReport{DryRun: dryRun, Results: make([]TransitionResult, 0, len(itemIDs))}
	for _, id := range itemIDs {
		report.add(e.transitionOne(ctx, id, targetState, dryRun))
	}
	report.finish(targetState)
	return report, nil
}

func (e *Executor) transitionOne(ctx context.Context, id int, target string, dryRun bool) TransitionResult {
	it, err := e.store.GetItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return TransitionErrorResult(id, "", target,
			fmt.Errorf("item %d not in local store; run boardman sync first", id))
	}
	if err != nil {
		return TransitionErrorResult(id, "", target, err)
	}

	if it.State == target {
		return AlreadyInStateResult(it.ID, it.Title, target)
	}
	if dryRun {
		return MovedResult(it.ID, it.Title, it.State, target)
	}

	if err := e.mutator.SetItemState(ctx, id, it.State, target); err != nil {
		e.logger.Warn("transition failed", "item", id, "target", target, "error", err)
		return TransitionErrorResult(id, it.Title, target, err)
	}
	if err := e.store.SetItemState(ctx, id, target); err != nil {
		// The tracker moved but the local record lagged; surface it so
		// the next sync is not a silent repair.
		return TransitionErrorResult(id, it.Title, target,
			fmt.Errorf("moved on tracker, local update failed: %w", err))
	}
	return MovedResult(it.ID, it.Title, it.State, target)
}
