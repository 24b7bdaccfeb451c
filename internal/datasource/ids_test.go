package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	assert.Equal(t, "issue-001", nextID("issue", nil))
	assert.Equal(t, "issue-003", nextID("issue", []string{"issue-001", "issue-002"}))
	assert.Equal(t, "comment-004", nextID("comment", []string{"c1", "c2", "comment-003"}))
	assert.Equal(t, "branch-005", nextID("branch", []string{"branch-main", "branch-001", "branch-003", "branch-004"}))
}
