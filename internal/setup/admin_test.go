package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateAdmin(t *testing.T) {
	fu := &fakeUsers{}
	m := &fakeManager{users: fu}
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	u, err := CreateAdmin(context.Background(), nil, m, hasher, AdminInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "Administrator", u.FullName)
	assert.True(t, u.IsActive)
	assert.True(t, u.IsVerified)
	assert.NotEqual(t, "longenough", u.PasswordHash)
	assert.True(t, hasher.Verify("longenough", u.PasswordHash))
}

func TestCreateAdmin_KeepsFullName(t *testing.T) {
	m := &fakeManager{users: &fakeUsers{}}

	u, err := CreateAdmin(context.Background(), nil, m, auth.NewPasswordHasher(bcrypt.MinCost), AdminInput{
		Username: "root", Email: "root@example.com", FullName: "Site Owner", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "Site Owner", u.FullName)
}

func TestCreateAdmin_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		users *fakeUsers
		want  error
	}{
		{name: "exists", users: &fakeUsers{exists: true}, want: errAdminExists},
		{name: "exists check fails", users: &fakeUsers{existsErr: boom}, want: boom},
		{name: "insert fails", users: &fakeUsers{createErr: boom}, want: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManager{users: tt.users}

			_, err := CreateAdmin(context.Background(), nil, m, auth.NewPasswordHasher(bcrypt.MinCost), AdminInput{
				Username: "root", Email: "root@example.com", Password: "longenough",
			})
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, tt.users.created)
		})
	}
}
