package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Commit is one git log entry, with any "#N" issue references extracted.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Items   []int  `json:"items,omitempty"`
}

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// RecentActivity returns commits in the working repository since the
// given time, newest first, from git log.
func (c *Client) RecentActivity(ctx context.Context, since time.Time) ([]Commit, error) {
	out, err := c.runner.Run(ctx, "git",
		"log",
		"--since", since.UTC().Format(time.RFC3339),
		"--pretty=format:%h%x09%an%x09%s",
	)
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	var commits []Commit
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Subject: parts[2],
			Items:   issueRefs(parts[2]),
		})
	}
	return commits, nil
}

// issueRefs extracts the issue numbers referenced in a commit subject.
func issueRefs(subject string) []int {
	var ids []int
	for _, m := range issueRefPattern.FindAllStringSubmatch(subject, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
