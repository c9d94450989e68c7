package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/lanternworks/boardman/internal/batch"
	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/metrics"
	"github.com/lanternworks/boardman/internal/store"
)

type fakeLister struct {
	items     []board.Item
	err       error
	calls     int
	lastState string
	lastLimit int
}

func (f *fakeLister) ListIssues(_ context.Context, state string, limit int) ([]board.Item, error) {
	f.calls++
	f.lastState = state
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type fakeClassifier struct {
	suggestions map[int][]string
	errs        map[int]error
}

func (f *fakeClassifier) NeedsTriage(it board.Item) bool {
	return len(board.MissingFacets(it.Facets, board.DefaultRequiredFacets())) > 0
}

func (f *fakeClassifier) Classify(_ context.Context, it board.Item) ([]string, error) {
	if err := f.errs[it.ID]; err != nil {
		return nil, err
	}
	return f.suggestions[it.ID], nil
}

type stateChange struct {
	id    int
	state string
}

type fakeStore struct {
	items    map[int]board.Item
	list     []board.Item
	listErr  error
	setErrs  map[int]error
	setCalls []stateChange
}

func (f *fakeStore) GetItem(_ context.Context, id int) (*board.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &it, nil
}

func (f *fakeStore) ListItems(_ context.Context, flt store.ItemFilter) ([]board.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []board.Item
	for _, it := range f.list {
		if flt.State != nil && it.State != *flt.State {
			continue
		}
		out = append(out, it)
		if flt.Limit > 0 && len(out) == flt.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) SetItemState(_ context.Context, id int, state string) error {
	if err := f.setErrs[id]; err != nil {
		return err
	}
	it, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	it.State = state
	f.items[id] = it
	f.setCalls = append(f.setCalls, stateChange{id, state})
	return nil
}

type move struct {
	id       int
	from, to string
}

type fakeMutator struct {
	moves []move
	errs  map[int]error
}

func (f *fakeMutator) SetItemState(_ context.Context, id int, from, to string) error {
	if err := f.errs[id]; err != nil {
		return err
	}
	f.moves = append(f.moves, move{id, from, to})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExecutor(lister *fakeLister, cl *fakeClassifier, st *fakeStore, mut *fakeMutator) (*batch.Executor, *metrics.Recorder) {
	rec := metrics.NewRecorder(discardLogger(), 0)
	e := batch.New(batch.Config{
		Lister:     lister,
		Classifier: cl,
		Store:      st,
		Mutator:    mut,
		Recorder:   rec,
		Logger:     discardLogger(),
	})
	return e, rec
}

func TestBulkClassify(t *testing.T) {
	lister := &fakeLister{items: []board.Item{
		{ID: 1, Title: "login crashes"},
		{ID: 2, Title: "tidy changelog"},
		{ID: 3, Title: "flaky export"},
	}}
	cl := &fakeClassifier{
		suggestions: map[int][]string{
			1: {"type:bug", "priority:high", board.ReadyMarker},
		},
		errs: map[int]error{3: errors.New("model timeout")},
	}
	st := &fakeStore{}
	mut := &fakeMutator{}
	e, _ := newExecutor(lister, cl, st, mut)

	report, err := e.BulkClassify(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("BulkClassify: %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
	if got := report.Results[0].Status(); got != batch.StatusTriaged {
		t.Errorf("results[0] status = %q, want triaged", got)
	}
	if got := report.Results[1].Status(); got != batch.StatusAlreadyClassified {
		t.Errorf("results[1] status = %q, want already_classified", got)
	}
	if got := report.Results[2].Status(); got != batch.StatusError {
		t.Errorf("results[2] status = %q, want error", got)
	}
	if !strings.Contains(report.Results[2].Err(), "model timeout") {
		t.Errorf("results[2] error = %q, want the classifier failure", report.Results[2].Err())
	}
	if report.Triaged != 1 || report.AlreadyClassified != 1 || report.Errors != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			report.Triaged, report.AlreadyClassified, report.Errors)
	}
	want := "Processed 3 issue(s): 1 need triage, 1 already classified, 1 error(s). Suggestions are advisory; no labels were changed."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}

	sf := report.Results[0].Suggested()
	if sf == nil {
		t.Fatal("triaged result has no suggested fields")
	}
	if sf.Type != "bug" || sf.Priority != "high" || sf.Area != "" {
		t.Errorf("suggested fields = %+v", sf)
	}
	if !sf.SpecReady {
		t.Error("readiness marker did not set SpecReady")
	}
	if len(sf.Labels) != 3 {
		t.Errorf("labels = %v, want all three suggestions", sf.Labels)
	}

	// Classification is advisory: nothing may be written anywhere.
	if len(mut.moves) != 0 || len(st.setCalls) != 0 {
		t.Error("classification batch performed writes")
	}
}

func TestBulkClassifySkipsClassifiedItems(t *testing.T) {
	lister := &fakeLister{items: []board.Item{
		{ID: 1, Title: "done deal", Facets: []string{"type:bug", "area:api"}},
		{ID: 2, Title: "needs work"},
	}}
	e, _ := newExecutor(lister, &fakeClassifier{}, &fakeStore{}, &fakeMutator{})

	report, err := e.BulkClassify(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("BulkClassify: %v", err)
	}
	if len(report.Results) != 1 || report.Results[0].ItemID() != 2 {
		t.Fatalf("results = %+v, want only item 2", report.Results)
	}
}

func TestBulkClassifyTruncatesToMaxItems(t *testing.T) {
	lister := &fakeLister{items: []board.Item{
		{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"},
		{ID: 4, Title: "d"}, {ID: 5, Title: "e"},
	}}
	e, _ := newExecutor(lister, &fakeClassifier{}, &fakeStore{}, &fakeMutator{})

	report, err := e.BulkClassify(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("BulkClassify: %v", err)
	}
	if lister.lastLimit != 4 {
		t.Errorf("lister limit = %d, want maxItems*2 = 4", lister.lastLimit)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(report.Results))
	}
	if report.Results[0].ItemID() != 1 || report.Results[1].ItemID() != 2 {
		t.Errorf("truncation broke input order: %+v", report.Results)
	}
}

func TestBulkClassifyFallsBackToLocalStore(t *testing.T) {
	lister := &fakeLister{err: errors.New("gh: connection refused")}
	st := &fakeStore{list: []board.Item{
		{ID: 1, Title: "first"},
		{ID: 2, Title: "second", Facets: []string{"type:bug", "area:api"}},
		{ID: 3, Title: "third"},
		{ID: 4, Title: "fourth"},
	}}
	cl := &fakeClassifier{suggestions: map[int][]string{1: {"type:bug"}}}
	e, _ := newExecutor(lister, cl, st, &fakeMutator{})

	report, err := e.BulkClassify(context.Background(), 3, "")
	if err != nil {
		t.Fatalf("fallback must not surface the lister failure, got %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("lister calls = %d, want 1", lister.calls)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want at most maxItems = 3", len(report.Results))
	}
	// Fallback items skip the missing-facet filter, so the classified
	// item flows through and comes back as already_classified.
	if got := report.Results[1].Status(); got != batch.StatusAlreadyClassified {
		t.Errorf("results[1] status = %q, want already_classified", got)
	}
}

func TestBulkClassifyBothSourcesFail(t *testing.T) {
	lister := &fakeLister{err: errors.New("gh: connection refused")}
	st := &fakeStore{listErr: errors.New("db locked")}
	e, _ := newExecutor(lister, &fakeClassifier{}, st, &fakeMutator{})

	report, err := e.BulkClassify(context.Background(), 5, "")
	if err != nil {
		t.Fatalf("BulkClassify: %v", err)
	}
	if len(report.Results) != 0 || report.Errors != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
	if !strings.HasPrefix(report.Summary, "Processed 0 issue(s)") {
		t.Errorf("summary = %q", report.Summary)
	}
}

func TestBulkClassifyRejectsUnknownState(t *testing.T) {
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, &fakeStore{}, &fakeMutator{})

	_, err := e.BulkClassify(context.Background(), 5, "Limbo")
	if err == nil || !strings.Contains(err.Error(), "Limbo") {
		t.Fatalf("err = %v, want unknown state failure", err)
	}
}

func TestBulkTransition(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		5: {ID: 5, Title: "ship it", State: "Backlog"},
		6: {ID: 6, Title: "in flight", State: "Active"},
	}}
	mut := &fakeMutator{}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, mut)

	report, err := e.BulkTransition(context.Background(), []int{5, 6}, "Active", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if report.Moved != 1 || report.AlreadyInState != 1 || report.Errors != 0 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/0",
			report.Moved, report.AlreadyInState, report.Errors)
	}

	first := report.Results[0]
	if first.Status() != batch.StatusMoved || first.From() != "Backlog" || first.To() != "Active" {
		t.Errorf("results[0] = %q %s->%s", first.Status(), first.From(), first.To())
	}
	second := report.Results[1]
	if second.Status() != batch.StatusAlreadyInState {
		t.Errorf("results[1] status = %q, want already_in_state", second.Status())
	}

	// Only the real move reaches the tracker and the store.
	if len(mut.moves) != 1 || mut.moves[0] != (move{5, "Backlog", "Active"}) {
		t.Errorf("mutator calls = %+v", mut.moves)
	}
	if len(st.setCalls) != 1 || st.setCalls[0] != (stateChange{5, "Active"}) {
		t.Errorf("store updates = %+v", st.setCalls)
	}
	want := "Moved 1 of 2 item(s) to Active, 0 error(s)."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestBulkTransitionDryRun(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		5: {ID: 5, Title: "ship it", State: "Backlog"},
		6: {ID: 6, Title: "in flight", State: "Active"},
	}}
	mut := &fakeMutator{}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, mut)

	report, err := e.BulkTransition(context.Background(), []int{5, 6}, "Active", true)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if !report.DryRun {
		t.Error("report does not carry the dry-run flag")
	}
	if len(mut.moves) != 0 || len(st.setCalls) != 0 {
		t.Error("dry run performed writes")
	}
	first := report.Results[0]
	if first.Status() != batch.StatusMoved || first.From() != "Backlog" || first.To() != "Active" {
		t.Errorf("dry-run result = %q %s->%s, want the would-be move", first.Status(), first.From(), first.To())
	}
	want := "Would move 1 of 2 item(s) to Active."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestBulkTransitionUnknownItem(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		5: {ID: 5, Title: "ship it", State: "Backlog"},
	}}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, &fakeMutator{})

	report, err := e.BulkTransition(context.Background(), []int{5, 99}, "Done", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if got := report.Results[0].Status(); got != batch.StatusMoved {
		t.Errorf("results[0] status = %q, want moved", got)
	}
	errRes := report.Results[1]
	if errRes.Status() != batch.StatusError || errRes.ItemID() != 99 {
		t.Fatalf("results[1] = %+v, want error for 99", errRes)
	}
	if !strings.Contains(errRes.Err(), "99") || !strings.Contains(errRes.Err(), "run boardman sync") {
		t.Errorf("error = %q, want the missing id and the sync hint", errRes.Err())
	}
	if report.Moved != 1 || report.Errors != 1 {
		t.Errorf("counts = %d moved / %d errors, want 1/1", report.Moved, report.Errors)
	}
}

func TestBulkTransitionDuplicateIDs(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		7: {ID: 7, Title: "twice", State: "Backlog"},
	}}
	mut := &fakeMutator{}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, mut)

	report, err := e.BulkTransition(context.Background(), []int{7, 7}, "Active", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want one per input id", len(report.Results))
	}
	// The first occurrence moves the item; the second sees the new state.
	if report.Moved != 1 || report.AlreadyInState != 1 {
		t.Errorf("counts = %d moved / %d already, want 1/1", report.Moved, report.AlreadyInState)
	}
	if len(mut.moves) != 1 {
		t.Errorf("mutator calls = %d, want 1", len(mut.moves))
	}
}

func TestBulkTransitionEmptyList(t *testing.T) {
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, &fakeStore{}, &fakeMutator{})

	report, err := e.BulkTransition(context.Background(), nil, "Done", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if len(report.Results) != 0 || report.Moved != 0 || report.Errors != 0 {
		t.Errorf("report = %+v, want zero everything", report)
	}
	want := "Moved 0 of 0 item(s) to Done, 0 error(s)."
	if report.Summary != want {
		t.Errorf("summary = %q, want %q", report.Summary, want)
	}
}

func TestBulkTransitionRejectsUnknownTarget(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		5: {ID: 5, Title: "ship it", State: "Backlog"},
	}}
	mut := &fakeMutator{}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, mut)

	report, err := e.BulkTransition(context.Background(), []int{5}, "Limbo", false)
	if err == nil {
		t.Fatal("want error for a target outside the board")
	}
	if report != nil {
		t.Errorf("report = %+v, want none", report)
	}
	if !strings.Contains(err.Error(), "Limbo") || !strings.Contains(err.Error(), "Backlog") {
		t.Errorf("err = %v, want the bad target and the valid states", err)
	}
	if len(mut.moves) != 0 || len(st.setCalls) != 0 {
		t.Error("invalid target still touched items")
	}
}

func TestBulkTransitionMutatorFailureIsContained(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		1: {ID: 1, Title: "a", State: "Backlog"},
		2: {ID: 2, Title: "b", State: "Backlog"},
		3: {ID: 3, Title: "c", State: "Backlog"},
	}}
	mut := &fakeMutator{errs: map[int]error{2: errors.New("gh: label rejected")}}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, mut)

	report, err := e.BulkTransition(context.Background(), []int{1, 2, 3}, "Active", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if report.Moved != 2 || report.Errors != 1 {
		t.Fatalf("counts = %d moved / %d errors, want 2/1", report.Moved, report.Errors)
	}
	if got := report.Results[1].Status(); got != batch.StatusError {
		t.Errorf("results[1] status = %q, want error", got)
	}
	if got := report.Results[2].Status(); got != batch.StatusMoved {
		t.Errorf("failure aborted the batch: results[2] status = %q", got)
	}
	// The failed item's local record is untouched.
	if got := st.items[2].State; got != "Backlog" {
		t.Errorf("item 2 state = %q, want Backlog", got)
	}
}

func TestBulkTransitionLocalUpdateFailure(t *testing.T) {
	st := &fakeStore{
		items:   map[int]board.Item{5: {ID: 5, Title: "ship it", State: "Backlog"}},
		setErrs: map[int]error{5: errors.New("db locked")},
	}
	e, _ := newExecutor(&fakeLister{}, &fakeClassifier{}, st, &fakeMutator{})

	report, err := e.BulkTransition(context.Background(), []int{5}, "Active", false)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	res := report.Results[0]
	if res.Status() != batch.StatusError {
		t.Fatalf("status = %q, want error", res.Status())
	}
	if !strings.Contains(res.Err(), "local update failed") {
		t.Errorf("error = %q, want the lagged-store detail", res.Err())
	}
}

func TestExecutorRecordsMetrics(t *testing.T) {
	st := &fakeStore{items: map[int]board.Item{
		5: {ID: 5, Title: "ship it", State: "Backlog"},
	}}
	e, rec := newExecutor(&fakeLister{}, &fakeClassifier{}, st, &fakeMutator{})

	if _, err := e.BulkClassify(context.Background(), 5, ""); err != nil {
		t.Fatalf("BulkClassify: %v", err)
	}
	if _, err := e.BulkTransition(context.Background(), []int{5}, "Active", false); err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}
	if _, err := e.BulkTransition(context.Background(), []int{5}, "Limbo", false); err == nil {
		t.Fatal("want error for unknown target")
	}

	snap := rec.Snapshot()
	if got := snap["bulk_classify"].Calls; got != 1 {
		t.Errorf("bulk_classify calls = %d, want 1", got)
	}
	tr := snap["bulk_transition"]
	if tr.Calls != 2 || tr.Errors != 1 {
		t.Errorf("bulk_transition = %d calls / %d errors, want 2/1", tr.Calls, tr.Errors)
	}
}

func TestClassifyResultJSON(t *testing.T) {
	it := board.Item{ID: 42, Title: "crash on save"}
	res := batch.TriagedResult(it, []string{"type:bug", board.ReadyMarker})

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["item_id"] != float64(42) || got["status"] != "triaged" {
		t.Errorf("payload = %v", got)
	}
	sf, ok := got["suggested_fields"].(map[string]any)
	if !ok {
		t.Fatalf("suggested_fields missing: %v", got)
	}
	if sf["type"] != "bug" || sf["spec_ready"] != true {
		t.Errorf("suggested_fields = %v", sf)
	}
	if _, present := got["error"]; present {
		t.Error("non-error result carries an error field")
	}

	raw, err = json.Marshal(batch.ClassifyErrorResult(it, errors.New("boom")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got = map[string]any{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "error" || got["error"] != "boom" {
		t.Errorf("payload = %v", got)
	}
	if _, present := got["suggested_fields"]; present {
		t.Error("error result carries suggested fields")
	}
}

func TestTransitionResultJSON(t *testing.T) {
	raw, err := json.Marshal(batch.MovedResult(5, "ship it", "Backlog", "Active"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["from_state"] != "Backlog" || got["to_state"] != "Active" || got["status"] != "moved" {
		t.Errorf("payload = %v", got)
	}

	raw, err = json.Marshal(batch.TransitionErrorResult(99, "", "Done", errors.New("missing")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got = map[string]any{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["from_state"] != nil {
		t.Errorf("from_state = %v, want null when never resolved", got["from_state"])
	}
	if got["to_state"] != "Done" {
		t.Errorf("to_state = %v, want the attempted target", got["to_state"])
	}
}
