package handlers

import (
	"net/http"
	"testing"

	"design-system-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueEndpoints(t *testing.T) {
	env := newTestEnv(t)
	client := &recordingClient{}
	env.hub.Register("bob", client)

	var list []models.Issue
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/issues?componentId=card-001", "alice", nil, &list))
	assert.Len(t, list, 2)
	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/issues", "", nil, nil))

	var created models.Issue
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/issues", "alice", map[string]any{
		"title":       "Tooltip flickers",
		"type":        "bug",
		"componentId": "tooltip-001",
	}, &created))
	assert.Equal(t, "issue-009", created.ID)
	assert.Equal(t, "alice", created.Author.Name)
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/issues", "alice", map[string]any{
		"title": "No type", "componentId": "x",
	}, nil))

	var comment models.IssueComment
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/issues/issue-009/comments", "alice", map[string]string{"content": "on Safari"}, &comment))
	assert.Equal(t, "alice", comment.Author.Name)

	var issue models.Issue
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/issues/issue-009/status", "alice", map[string]string{"status": "in_progress"}, &issue))
	assert.Equal(t, models.IssueInProgress, issue.Status)
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/issues/issue-009/status", "alice", map[string]string{"status": "archived"}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/issues/issue-009/assignee", "alice", map[string]any{"assignee": map[string]string{"name": "bob"}}, &issue))
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, "bob", issue.Assignee.Name)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/issues/issue-009", "alice", map[string]any{"priority": "high"}, &issue))
	assert.Equal(t, models.PriorityHigh, issue.Priority)
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPatch, "/api/issues/issue-009", "alice", map[string]any{"title": "  "}, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/issues/issue-009/close", "alice", nil, &issue))
	assert.Equal(t, models.IssueClosed, issue.Status)

	var stats models.IssueStats
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/issues/stats", "alice", nil, &stats))
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 2, stats.Closed)

	var labels struct {
		Labels []string `json:"labels"`
		Source string   `json:"dataSource"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/issues/labels", "alice", nil, &labels))
	assert.Equal(t, "mock", labels.Source)
	assert.Len(t, labels.Labels, 18)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/issues/issue-009", "alice", nil, nil))
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/issues/issue-009", "alice", nil, nil))
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/issues/issue-009/close", "alice", nil, nil))

	var kinds []any
	for _, evt := range client.events() {
		kinds = append(kinds, evt["type"])
	}
	assert.Equal(t, []any{
		"issue_created", "issue_commented", "issue_updated", "issue_updated",
		"issue_updated", "issue_updated", "issue_deleted",
	}, kinds)
}
