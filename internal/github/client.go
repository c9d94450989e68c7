package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lanternworks/boardman/internal/board"
)

// Client talks to one repository through the gh CLI.
type Client struct {
	runner Runner
	repo   string // "owner/name"
	logger *slog.Logger
}

// NewClient creates a Client for the given repository.
func NewClient(runner Runner, repo string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		runner: runner,
		repo:   repo,
		logger: logger.With("component", "github"),
	}
}

// ghIssue is the subset of gh's --json output boardman reads.
type ghIssue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Labels    []ghLabel `json:"labels"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ghLabel struct {
	Name string `json:"name"`
}

// ListIssues returns open issues as board items, optionally filtered to
// one board state. Board state and facets are derived from labels.
func (c *Client) ListIssues(ctx context.Context, state string, limit int) ([]board.Item, error) {
	if limit <= 0 {
		limit = 30
	}
	args := []string{
		"issue", "list",
		"--repo", c.repo,
		"--json", "number,title,labels,url,updatedAt",
		"--limit", strconv.Itoa(limit),
	}
	if state != "" {
		args = append(args, "--label", board.StateLabel(state))
	}

	c.logger.Debug("listing issues", "state", state, "limit", limit)
	out, err := c.runner.Run(ctx, "gh", args...)
	if err != nil {
		return nil, fmt.Errorf("gh issue list: %w", err)
	}

	var raw []ghIssue
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse gh issue list: %w", err)
	}

	items := make([]board.Item, 0, len(raw))
	for _, gi := range raw {
		items = append(items, toItem(gi))
	}
	return items, nil
}

// GetIssue fetches a single issue by number.
func (c *Client) GetIssue(ctx context.Context, number int) (*board.Item, error) {
	out, err := c.runner.Run(ctx, "gh",
		"issue", "view", strconv.Itoa(number),
		"--repo", c.repo,
		"--json", "number,title,labels,url,updatedAt",
	)
	if err != nil {
		return nil, fmt.Errorf("gh issue view %d: %w", number, err)
	}

	var gi ghIssue
	if err := json.Unmarshal(out, &gi); err != nil {
		return nil, fmt.Errorf("parse gh issue view: %w", err)
	}
	it := toItem(gi)
	return &it, nil
}

// SetItemState moves an issue between board states by swapping its
// "status:" label. An empty from skips the remove half.
func (c *Client) SetItemState(ctx context.Context, id int, from, to string) error {
	args := []string{
		"issue", "edit", strconv.Itoa(id),
		"--repo", c.repo,
		"--add-label", board.StateLabel(to),
	}
	if from != "" {
		args = append(args, "--remove-label", board.StateLabel(from))
	}

	c.logger.Debug("moving issue", "id", id, "from", from, "to", to)
	if _, err := c.runner.Run(ctx, "gh", args...); err != nil {
		return fmt.Errorf("gh issue edit %d: %w", id, err)
	}
	return nil
}

func toItem(gi ghIssue) board.Item {
	labels := make([]string, 0, len(gi.Labels))
	for _, l := range gi.Labels {
		labels = append(labels, l.Name)
	}
	state, facets := board.SplitLabels(labels)
	return board.Item{
		ID:        gi.Number,
		Title:     gi.Title,
		State:     state,
		Facets:    facets,
		URL:       gi.URL,
		UpdatedAt: gi.UpdatedAt,
	}
}
