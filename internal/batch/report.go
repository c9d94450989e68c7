package batch

import "fmt"

// ClassifyReport aggregates one classification batch. Counts always sum
// to len(Results), and the summary is written for an orchestrator that
// never inspects individual results.
type ClassifyReport struct {
	Results           []ClassifyResult `json:"results"`
	Triaged           int              `json:"triaged"`
	AlreadyClassified int              `json:"already_classified"`
	Errors            int              `json:"errors"`
	Summary           string           `json:"summary"`
}

func (r *ClassifyReport) add(res ClassifyResult) {
	r.Results = append(r.Results, res)
	switch res.status {
	case StatusTriaged:
		r.Triaged++
	case StatusAlreadyClassified:
		r.AlreadyClassified++
	case StatusError:
		r.Errors++
	}
}

func (r *ClassifyReport) finish() {
	r.Summary = fmt.Sprintf(
		"Processed %d issue(s): %d need triage, %d already classified, %d error(s). Suggestions are advisory; no labels were changed.",
		len(r.Results), r.Triaged, r.AlreadyClassified, r.Errors)
}

// TransitionReport aggregates one transition batch.
type TransitionReport struct {
	Results        []TransitionResult `json:"results"`
	Moved          int                `json:"moved"`
	AlreadyInState int                `json:"already_in_state"`
	Errors         int                `json:"errors"`
	DryRun         bool               `json:"dry_run"`
	Summary        string             `json:"summary"`
}

func (r *TransitionReport) add(res TransitionResult) {
	r.Results = append(r.Results, res)
	switch res.status {
	case StatusMoved:
		r.Moved++
	case StatusAlreadyInState:
		r.AlreadyInState++
	case StatusError:
		r.Errors++
	}
}

func (r *TransitionReport) finish(target string) {
	if r.DryRun {
		r.Summary = fmt.Sprintf("Would move %d of %d item(s) to %s.", r.Moved, len(r.Results), target)
		return
	}
	r.Summary = fmt.Sprintf("Moved %d of %d item(s) to %s, %d error(s).", r.Moved, len(r.Results), target, r.Errors)
}
