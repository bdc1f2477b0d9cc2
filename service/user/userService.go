package usersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/chandan0609/LMS-3/model"
	"github.com/chandan0609/LMS-3/policy"
	userrepo "github.com/chandan0609/LMS-3/repository/user"
	"github.com/chandan0609/LMS-3/util/hash"
)

type ErrCode string

const (
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrBadInput  ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Me(ctx context.Context, userID int64) (*model.User, error)
	Get(ctx context.Context, actorID int64, actorRole model.Role, id int64) (*model.User, error)
	List(ctx context.Context, actorRole model.Role) ([]model.User, error)
	Update(ctx context.Context, actorID int64, actorRole model.Role, id int64, req model.UpdateUserReq) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return u, err
}

func (s *service) Get(ctx context.Context, actorID int64, actorRole model.Role, id int64) (*model.User, error) {
	switch policy.Decide(actorRole, policy.UserRetrieve) {
	case policy.Allow:
	case policy.AllowOwn:
		if actorID != id {
			return nil, makeErr(ErrForbidden)
		}
	default:
		return nil, makeErr(ErrForbidden)
	}

	u, err := s.ur.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return u, err
}

func (s *service) List(ctx context.Context, actorRole model.Role) ([]model.User, error) {
	if policy.Decide(actorRole, policy.UserList) != policy.Allow {
		return nil, makeErr(ErrForbidden)
	}
	return s.ur.List(ctx)
}

// Update applies a partial update. Members and librarians may only edit
// their own profile fields; the role field is admin-only.
func (s *service) Update(ctx context.Context, actorID int64, actorRole model.Role, id int64, req model.UpdateUserReq) (*model.User, error) {
	switch policy.Decide(actorRole, policy.UserUpdate) {
	case policy.Allow:
	case policy.AllowOwn:
		if actorID != id {
			return nil, makeErr(ErrForbidden)
		}
		if req.Role != nil {
			return nil, makeErr(ErrForbidden)
		}
	default:
		return nil, makeErr(ErrForbidden)
	}

	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, makeErr(ErrBadInput)
		}
		u.Email = email
	}
	if req.Password != nil {
		hashed, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, makeErr(ErrBadInput)
		}
		u.Role = *req.Role
	}

	if err := s.ur.Update(ctx, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}
