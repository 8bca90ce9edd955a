package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
)

func companyID(id int64) *int64 { return &id }

func TestResolveDefaultsToUserRole(t *testing.T) {
	resolved := Resolve(nil)
	require.Len(t, resolved, 1)
	assert.Equal(t, auth.RoleUser, resolved[0].Code)
	assert.Nil(t, resolved[0].CompanyID)
}

func TestResolveKeepsAssignments(t *testing.T) {
	assignments := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: companyID(1)},
		{Code: auth.RoleCompanyAdmin, CompanyID: companyID(2)},
	}
	assert.Equal(t, assignments, Resolve(assignments))
}

func TestResolveActiveSingleRoleAutoSelected(t *testing.T) {
	assignments := []auth.RoleAssignment{{Code: auth.RoleUser}}

	active, err := ResolveActive(assignments, nil)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, auth.RoleUser, active.Code)
	assert.Nil(t, active.CompanyID)
}

func TestResolveActiveMultiRoleDefaultsToNil(t *testing.T) {
	assignments := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: companyID(1)},
		{Code: auth.RoleCompanyAdmin, CompanyID: companyID(2)},
	}

	active, err := ResolveActive(assignments, nil)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestResolveActiveExplicitSelection(t *testing.T) {
	assignments := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: companyID(1)},
		{Code: auth.RoleCompanyAdmin, CompanyID: companyID(2)},
	}

	active, err := ResolveActive(assignments, &auth.RoleAssignment{Code: auth.RoleCompanyAdmin, CompanyID: companyID(2)})
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, auth.RoleCompanyAdmin, active.Code)
	assert.Equal(t, int64(2), *active.CompanyID)
}

func TestResolveActiveUnassignedRoleForbidden(t *testing.T) {
	assignments := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: companyID(1)},
	}

	_, err := ResolveActive(assignments, &auth.RoleAssignment{Code: auth.RolePlatformAdmin})
	assert.ErrorIs(t, err, xerrors.ErrForbiddenRole)
}

func TestResolveActiveCompanyMismatchForbidden(t *testing.T) {
	assignments := []auth.RoleAssignment{
		{Code: auth.RoleAgent, CompanyID: companyID(1)},
	}

	// same role code under a different company is still forbidden
	_, err := ResolveActive(assignments, &auth.RoleAssignment{Code: auth.RoleAgent, CompanyID: companyID(9)})
	assert.ErrorIs(t, err, xerrors.ErrForbiddenRole)

	// global variant of a tenant-scoped assignment is forbidden too
	_, err = ResolveActive(assignments, &auth.RoleAssignment{Code: auth.RoleAgent})
	assert.ErrorIs(t, err, xerrors.ErrForbiddenRole)
}
