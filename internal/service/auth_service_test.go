package service

import (
	"testing"

	"burgerpos/internal/apierror"
	"burgerpos/internal/dto"
	"burgerpos/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userID(t *testing.T, env *testEnv, username string) uuid.UUID {
	t.Helper()
	for _, u := range env.auth.ListUsers(env.ctx) {
		if u.Username == username {
			return uuid.MustParse(u.ID)
		}
	}
	t.Fatalf("user %s not seeded", username)
	return uuid.Nil
}

func TestLogin_IssuesTokenAndSetsSession(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.auth.Login(env.ctx, dto.LoginRequest{Username: "CAIXA1", Password: "caixa123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleCashier, resp.User.Role)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims["user_id"])
	assert.Equal(t, "cashier", claims["rol"])

	actor := env.auth.CurrentActor(env.ctx)
	require.NotNil(t, actor)
	assert.Equal(t, "João Silva", actor.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Login(env.ctx, dto.LoginRequest{Username: "caixa1", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(env.ctx, dto.LoginRequest{Username: "ninguem", Password: "caixa123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, env.auth.CurrentActor(env.ctx))
}

func TestValidateSession_SingleUser(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "caixa1", "caixa123")
	first := userID(t, env, "caixa1")
	require.NoError(t, env.auth.ValidateSession(env.ctx, first))

	env.login(t, "caixa2", "caixa123")
	err := env.auth.ValidateSession(env.ctx, first)
	assert.True(t, apierror.IsKind(err, apierror.KindPrecondition), "older token is superseded")

	require.NoError(t, env.auth.Logout(env.ctx))
	assert.Error(t, env.auth.ValidateSession(env.ctx, userID(t, env, "caixa2")))
}

func TestLogout_KeepsShiftOpen(t *testing.T) {
	env := newTestEnv(t)
	sh := env.openShift(t)
	require.NoError(t, env.auth.Logout(env.ctx))

	cur := env.shifts.Current(env.ctx)
	require.NotNil(t, cur)
	assert.Equal(t, sh.ID, cur.Shift.ID)
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.auth.CreateUser(env.ctx, dto.CreateUserRequest{Username: "caixa3", Name: "Ana Souza", Password: "segredo", Role: model.RoleCashier})
	require.NoError(t, err)
	assert.Len(t, env.auth.ListUsers(env.ctx), 4)

	_, err = env.auth.CreateUser(env.ctx, dto.CreateUserRequest{Username: "Caixa3", Name: "Dup", Password: "x", Role: model.RoleCashier})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	_, err = env.auth.CreateUser(env.ctx, dto.CreateUserRequest{Username: "gerente", Name: "G", Password: "x", Role: "manager"})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	id := uuid.MustParse(created.ID)
	updated, err := env.auth.UpdateUser(env.ctx, id, dto.UpdateUserRequest{Password: "novasenha", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	env.login(t, "caixa3", "novasenha")

	assert.True(t, apierror.IsKind(env.auth.DeleteUser(env.ctx, id), apierror.KindConflict), "logged-in user")
	require.NoError(t, env.auth.Logout(env.ctx))
	require.NoError(t, env.auth.DeleteUser(env.ctx, id))
	assert.True(t, apierror.IsKind(env.auth.DeleteUser(env.ctx, id), apierror.KindNotFound))
}

func TestLastAdminIsProtected(t *testing.T) {
	env := newTestEnv(t)
	admin := userID(t, env, "admin")

	_, err := env.auth.UpdateUser(env.ctx, admin, dto.UpdateUserRequest{Role: model.RoleCashier})
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.True(t, apierror.IsKind(env.auth.DeleteUser(env.ctx, admin), apierror.KindConflict))
}
