package service

import "sentinel/internal/domain"

// issueKey identifies an issue for repeat suppression
type issueKey struct {
	severity  domain.Severity
	issueType string
}

// suppressor drops issue events already emitted the previous cycle.
// Issues still appear in every summary; only the event stream is
// deduplicated. The synthetic healthy issue always passes.
type suppressor struct {
	enabled  bool
	previous map[issueKey]bool
}

func newSuppressor(enabled bool) *suppressor {
	return &suppressor{enabled: enabled}
}

// filter returns the issues whose events should be published this
// cycle and records the full set for the next one.
func (s *suppressor) filter(issues []domain.Issue) []domain.Issue {
	if !s.enabled {
		return issues
	}

	current := make(map[issueKey]bool, len(issues))
	var out []domain.Issue
	for _, issue := range issues {
		key := issueKey{severity: issue.Severity, issueType: issue.Type}
		current[key] = true
		if issue.Type == domain.IssueTypeHealthy || !s.previous[key] {
			out = append(out, issue)
		}
	}
	s.previous = current
	return out
}
