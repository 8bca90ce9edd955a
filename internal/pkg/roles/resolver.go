// internal/pkg/roles/resolver.go
package roles

import (
	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
)

// Resolve returns the user's effective role set. A user with no persisted
// assignments still gets the synthetic global USER role, so every issued
// token carries at least one role.
func Resolve(assignments []auth.RoleAssignment) []auth.RoleAssignment {
	if len(assignments) == 0 {
		return []auth.RoleAssignment{{Code: auth.RoleUser}}
	}
	return assignments
}

// ResolveActive picks the active role for a token.
//
// With an explicit request, the (code, company) pair must match one of the
// user's assignments exactly or the request fails with ErrForbiddenRole.
// Without one, a single-assignment user gets that assignment pre-selected
// (backward-compatibility rule); multi-role users get nil until they select.
func ResolveActive(assignments []auth.RoleAssignment, requested *auth.RoleAssignment) (*auth.RoleAssignment, error) {
	if requested != nil {
		for _, a := range assignments {
			if a.Equal(*requested) {
				match := a
				return &match, nil
			}
		}
		return nil, xerrors.ErrForbiddenRole
	}

	if len(assignments) == 1 {
		only := assignments[0]
		return &only, nil
	}

	return nil, nil
}
