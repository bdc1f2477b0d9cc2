// Package policy is the single place role-based access is decided. Handlers
// and services ask Decide before touching a repository; nothing else in the
// codebase branches on roles.
package policy

import "github.com/chandan0609/LMS-3/model"

type Action string

const (
	UserCreate   Action = "user.create"
	UserList     Action = "user.list"
	UserRetrieve Action = "user.retrieve"
	UserUpdate   Action = "user.update"

	BookRead  Action = "book.read"
	BookWrite Action = "book.write"

	CategoryRead  Action = "category.read"
	CategoryWrite Action = "category.write"

	BorrowCreate   Action = "borrow.create"
	BorrowList     Action = "borrow.list"
	BorrowReturn   Action = "borrow.return"
	BorrowCheckDue Action = "borrow.check_due"
)

type Decision int

const (
	Deny Decision = iota
	Allow
	// AllowOwn permits the action only against the caller's own resource;
	// ownership is checked by the service holding the record.
	AllowOwn
)

var table = map[model.Role]map[Action]Decision{
	model.RoleAdmin: {
		UserCreate:   Allow,
		UserList:     Allow,
		UserRetrieve: Allow,
		UserUpdate:   Allow,

		BookRead:  Allow,
		BookWrite: Allow,

		CategoryRead:  Allow,
		CategoryWrite: Allow,

		BorrowCreate:   Allow,
		BorrowList:     Allow,
		BorrowReturn:   Allow,
		BorrowCheckDue: Allow,
	},
	model.RoleLibrarian: {
		UserCreate:   Allow,
		UserRetrieve: AllowOwn,
		UserUpdate:   AllowOwn,

		BookRead:  Allow,
		BookWrite: Allow,

		CategoryRead:  Allow,
		CategoryWrite: Allow,

		BorrowCreate: Allow,
		BorrowList:   Allow,
		BorrowReturn: Allow,
	},
	model.RoleMember: {
		UserCreate:   Allow,
		UserRetrieve: AllowOwn,
		UserUpdate:   AllowOwn,

		CategoryRead: Allow,

		// Create is inherently self-scoped: a member always borrows
		// for themself.
		BorrowCreate: AllowOwn,
		BorrowList:   AllowOwn,
		BorrowReturn: AllowOwn,
	},
	model.RoleAnonymous: {
		UserCreate: Allow,
	},
}

// Decide resolves (role, action) against the table. Unknown roles and
// unlisted actions deny.
func Decide(role model.Role, action Action) Decision {
	actions, ok := table[role]
	if !ok {
		return Deny
	}
	return actions[action]
}
