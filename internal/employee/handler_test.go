package employee

import (
	"testing"

	"lezzet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRoleFor(t *testing.T) {
	assert.Equal(t, models.RoleChef, loginRoleFor(models.EmployeeChef))
	assert.Equal(t, models.RoleClerk, loginRoleFor(models.EmployeeClerk))
	assert.Equal(t, models.RoleCustomer, loginRoleFor(models.EmployeeWaiter))
}

func TestTempPassword(t *testing.T) {
	p1, err := tempPassword()
	require.NoError(t, err)
	p2, err := tempPassword()
	require.NoError(t, err)

	assert.Len(t, p1, 12)
	assert.NotEqual(t, p1, p2)
}
