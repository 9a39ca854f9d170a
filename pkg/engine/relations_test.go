package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacymig/pkg/schema"
)

func TestReconcileBranches(t *testing.T) {
	users := []schema.User{
		{OldID: "42", OldBranchID: strPtr("3"), OldRoleID: strPtr("1")},
		{OldID: "43"},
		{OldID: "44", OldBranchID: strPtr("")},
	}
	rows := []schema.Row{
		{"user_id": "42", "branch_id": "3"},
		{"user_id": "42", "branch_id": "4"},
		{"user_id": "43", "branch_id": "3"},
		{"user_id": "99", "branch_id": "3"},
		{"branch_id": "3"},
		{"user_id": "44"},
		{"user_id": "44", "branch_id": ""},
	}

	got := ReconcileBranches(users, rows)
	require.Len(t, got, len(rows), "no relation row is dropped")

	assert.Equal(t, schema.UserBranch{OldUserID: "42", OldBranchID: "3", LastUsed: true}, got[0])
	assert.False(t, got[1].LastUsed)
	assert.False(t, got[2].LastUsed, "user without an active branch")
	assert.False(t, got[3].LastUsed, "unknown user")
	assert.Equal(t, "99", got[3].OldUserID)
	assert.False(t, got[4].LastUsed)
	assert.Equal(t, schema.UserBranch{OldUserID: "44"}, got[5], "empty active branch matches nothing")
	assert.False(t, got[6].LastUsed)
}

func TestReconcileRoles(t *testing.T) {
	users := []schema.User{{OldID: "42", OldRoleID: strPtr("1")}}
	rows := []schema.Row{
		{"user_id": "42", "role_id": "1"},
		{"user_id": "42", "role_id": "2"},
	}

	assert.Equal(t, []schema.UserRole{
		{OldUserID: "42", OldRoleID: "1", LastUsed: true},
		{OldUserID: "42", OldRoleID: "2", LastUsed: false},
	}, ReconcileRoles(users, rows))
}
