package usersvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan0609/LMS-3/model"
	userrepo "github.com/chandan0609/LMS-3/repository/user"
)

type mockRepo struct {
	byIDFn   func(ctx context.Context, id int64) (*model.User, error)
	listFn   func(ctx context.Context) ([]model.User, error)
	updateFn func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error { return nil }

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, sql.ErrNoRows
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) List(ctx context.Context) ([]model.User, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}

func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}

func member(id int64) *model.User {
	return &model.User{ID: id, Email: "m@example.com", Username: "m", Role: model.RoleMember}
}

func strPtr(s string) *string        { return &s }
func rolePtr(r model.Role) *model.Role { return &r }

func TestList_AdminOnly(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		listFn: func(ctx context.Context) ([]model.User, error) {
			return []model.User{*member(1), *member(2)}, nil
		},
	}
	svc := New(m)

	users, err := svc.List(ctx, model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = svc.List(ctx, model.RoleLibrarian)
	require.Equal(t, ErrForbidden, Code(err))

	_, err = svc.List(ctx, model.RoleMember)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestGet_SelfOrAdmin(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return member(id), nil
		},
	}
	svc := New(m)

	u, err := svc.Get(ctx, 3, model.RoleMember, 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)

	_, err = svc.Get(ctx, 3, model.RoleMember, 4)
	require.Equal(t, ErrForbidden, Code(err))

	u, err = svc.Get(ctx, 1, model.RoleAdmin, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), u.ID)
}

func TestUpdate_SelfFields(t *testing.T) {
	ctx := context.Background()
	var saved *model.User
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return member(id), nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}
	svc := New(m)

	u, err := svc.Update(ctx, 3, model.RoleMember, 3, model.UpdateUserReq{
		FirstName: strPtr("New"),
		Email:     strPtr("New@Example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, "New", u.FirstName)
	require.Equal(t, "new@example.com", u.Email)
	require.Equal(t, model.RoleMember, u.Role)
	require.NotNil(t, saved)
}

func TestUpdate_MemberCannotSetRole(t *testing.T) {
	ctx := context.Background()
	touched := false
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			touched = true
			return member(id), nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, 3, model.RoleMember, 3, model.UpdateUserReq{
		Role: rolePtr(model.RoleAdmin),
	})
	require.Equal(t, ErrForbidden, Code(err))
	require.False(t, touched, "denied update must not read the record")
}

func TestUpdate_MemberCannotEditOthers(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.Update(ctx, 3, model.RoleMember, 4, model.UpdateUserReq{
		FirstName: strPtr("X"),
	})
	require.Equal(t, ErrForbidden, Code(err))
}

func TestUpdate_AdminElevatesRole(t *testing.T) {
	ctx := context.Background()
	var saved *model.User
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return member(id), nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}
	svc := New(m)

	u, err := svc.Update(ctx, 1, model.RoleAdmin, 3, model.UpdateUserReq{
		Role: rolePtr(model.RoleLibrarian),
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleLibrarian, u.Role)
	require.Equal(t, model.RoleLibrarian, saved.Role)
}

func TestUpdate_RejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return member(id), nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, 1, model.RoleAdmin, 3, model.UpdateUserReq{
		Role: rolePtr(model.Role("root")),
	})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestMe_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{})

	_, err := svc.Me(ctx, 9)
	require.Equal(t, ErrNotFound, Code(err))
}
