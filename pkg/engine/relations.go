package engine

import "legacymig/pkg/schema"

// activeIDs maps user old ids to one of their active reference ids. The
// first user with a given old id wins.
func activeIDs(users []schema.User, pick func(*schema.User) *string) map[string]*string {
	out := make(map[string]*string, len(users))
	for i := range users {
		if _, exists := out[users[i].OldID]; !exists {
			out[users[i].OldID] = pick(&users[i])
		}
	}
	return out
}

// isActive reports whether the user has an active id equal to id. Unknown
// users, users without an active id and rows without an id are never active.
func isActive(active map[string]*string, userID, id string) bool {
	if id == "" {
		return false
	}
	cur, ok := active[userID]
	return ok && cur != nil && *cur != "" && *cur == id
}

// ReconcileBranches annotates intra_users_branches rows. Every row produces
// exactly one relation, in input order, even when the user is unknown.
func ReconcileBranches(users []schema.User, rows []schema.Row) []schema.UserBranch {
	active := activeIDs(users, func(u *schema.User) *string { return u.OldBranchID })

	out := make([]schema.UserBranch, 0, len(rows))
	for _, row := range rows {
		userID, branchID := row["user_id"], row["branch_id"]
		out = append(out, schema.UserBranch{
			OldUserID:   userID,
			OldBranchID: branchID,
			LastUsed:    isActive(active, userID, branchID),
		})
	}
	return out
}

// ReconcileRoles annotates intra_users_roles rows the same way.
func ReconcileRoles(users []schema.User, rows []schema.Row) []schema.UserRole {
	active := activeIDs(users, func(u *schema.User) *string { return u.OldRoleID })

	out := make([]schema.UserRole, 0, len(rows))
	for _, row := range rows {
		userID, roleID := row["user_id"], row["role_id"]
		out = append(out, schema.UserRole{
			OldUserID: userID,
			OldRoleID: roleID,
			LastUsed:  isActive(active, userID, roleID),
		})
	}
	return out
}
