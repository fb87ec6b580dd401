package usecase

import (
	"context"
	"testing"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	store  *memStore
	uc     UserUsecase
	roleID int
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	store := newMemStore()
	role := &entity.Role{Name: entity.RoleUser}
	require.NoError(t, fakeRoleRepo{store}.Create(context.Background(), nil, role))

	uc := NewUserUsecase(
		&fakeTransactor{serialize: true},
		quietLogger(),
		validator.NewValidator(),
		fakeUserRepo{store},
		fakeRoleRepo{store},
		bcrypt.MinCost,
	)
	return &userFixture{store: store, uc: uc, roleID: role.ID}
}

func (f *userFixture) input(dni, email string) *CreateUserInput {
	return &CreateUserInput{
		RoleID:   f.roleID,
		Username: "jdoe",
		Name:     "John",
		Lastname: "Doe",
		DNI:      dni,
		Email:    email,
		Phone:    "5551234567",
		Password: "s3cret-pass",
	}
}

func TestCreateUserStoresHashedActiveUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	id, err := f.uc.CreateUser(ctx, f.input("12345678", "john@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, id)

	user, err := f.uc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.Active())
	assert.Nil(t, user.VirtualLink)
	assert.Equal(t, entity.RoleUser, user.Role.Name)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass")))
}

func TestCreateUserDuplicateDNI(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateUser(ctx, f.input("12345678", "a@example.com"))
	require.NoError(t, err)

	_, err = f.uc.CreateUser(ctx, f.input("12345678", "b@example.com"))
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "dni", conflict.Field)
	assert.Equal(t, "12345678", conflict.Value)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateUser(ctx, f.input("111", "same@example.com"))
	require.NoError(t, err)

	_, err = f.uc.CreateUser(ctx, f.input("222", "same@example.com"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestCreateUserUnknownRole(t *testing.T) {
	f := newUserFixture(t)
	input := f.input("12345678", "john@example.com")
	input.RoleID = f.roleID + 100

	_, err := f.uc.CreateUser(context.Background(), input)
	require.ErrorIs(t, err, ErrNotFound)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "role", notFound.Entity)
	assert.Empty(t, f.store.users)
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateUserInput)
		field  string
	}{
		{"dni too long", func(in *CreateUserInput) { in.DNI = "1234567890123456" }, "DNI"},
		{"bad email", func(in *CreateUserInput) { in.Email = "not-an-email" }, "Email"},
		{"phone letters", func(in *CreateUserInput) { in.Phone = "555-CALL" }, "Phone"},
		{"short password", func(in *CreateUserInput) { in.Password = "short" }, "Password"},
		{"bad link", func(in *CreateUserInput) { in.VirtualLink = "meet me" }, "VirtualLink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.input("12345678", "john@example.com")
			tt.mutate(input)

			_, err := f.uc.CreateUser(context.Background(), input)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}
}

func TestUpdateUserPatchesFields(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	input := f.input("12345678", "john@example.com")
	input.VirtualLink = "https://meet.example.com/john"
	id, err := f.uc.CreateUser(ctx, input)
	require.NoError(t, err)

	name := "Johnny"
	noLink := ""
	updated, err := f.uc.UpdateUser(ctx, id, &UpdateUserInput{Name: &name, VirtualLink: &noLink})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "Doe", updated.Lastname)
	assert.Nil(t, updated.VirtualLink)
}

func TestUpdateUserVirtualLink(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	id, err := f.uc.CreateUser(ctx, f.input("12345678", "john@example.com"))
	require.NoError(t, err)

	link := "https://meet.example.com/john"
	updated, err := f.uc.UpdateUser(ctx, id, &UpdateUserInput{VirtualLink: &link})
	require.NoError(t, err)
	require.NotNil(t, updated.VirtualLink)
	assert.Equal(t, link, *updated.VirtualLink)

	bad := "meet me"
	_, err = f.uc.UpdateUser(ctx, id, &UpdateUserInput{VirtualLink: &bad})
	require.ErrorIs(t, err, ErrValidation)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "VirtualLink must be a valid URL", validationErr.Fields["VirtualLink"])

	user, err := f.uc.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, user.VirtualLink)
	assert.Equal(t, link, *user.VirtualLink)

	noLink := ""
	updated, err = f.uc.UpdateUser(ctx, id, &UpdateUserInput{VirtualLink: &noLink})
	require.NoError(t, err)
	assert.Nil(t, updated.VirtualLink)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateUser(ctx, f.input("111", "taken@example.com"))
	require.NoError(t, err)
	id, err := f.uc.CreateUser(ctx, f.input("222", "free@example.com"))
	require.NoError(t, err)

	email := "taken@example.com"
	_, err = f.uc.UpdateUser(ctx, id, &UpdateUserInput{Email: &email})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateUserNotFound(t *testing.T) {
	f := newUserFixture(t)
	name := "Ghost"

	_, err := f.uc.UpdateUser(context.Background(), 999, &UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetUserActiveAndListFilter(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	keep, err := f.uc.CreateUser(ctx, f.input("111", "keep@example.com"))
	require.NoError(t, err)
	drop, err := f.uc.CreateUser(ctx, f.input("222", "drop@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.uc.SetUserActive(ctx, drop, false))

	active, err := f.uc.ListUsers(ctx, entity.UserFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep, active[0].ID)

	all, err := f.uc.ListUsers(ctx, entity.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.uc.SetUserActive(ctx, 999, true), ErrNotFound)
}
