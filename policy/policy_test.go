package policy

import (
	"testing"

	"github.com/chandan0609/LMS-3/model"
)

// One case per cell of the access table.
func TestDecide(t *testing.T) {
	cases := []struct {
		role   model.Role
		action Action
		want   Decision
	}{
		// registration is open to everyone, anonymous included
		{model.RoleAdmin, UserCreate, Allow},
		{model.RoleLibrarian, UserCreate, Allow},
		{model.RoleMember, UserCreate, Allow},
		{model.RoleAnonymous, UserCreate, Allow},

		// only admin lists users
		{model.RoleAdmin, UserList, Allow},
		{model.RoleLibrarian, UserList, Deny},
		{model.RoleMember, UserList, Deny},
		{model.RoleAnonymous, UserList, Deny},

		// profile access is self-scoped except for admin
		{model.RoleAdmin, UserRetrieve, Allow},
		{model.RoleLibrarian, UserRetrieve, AllowOwn},
		{model.RoleMember, UserRetrieve, AllowOwn},
		{model.RoleAnonymous, UserRetrieve, Deny},
		{model.RoleAdmin, UserUpdate, Allow},
		{model.RoleLibrarian, UserUpdate, AllowOwn},
		{model.RoleMember, UserUpdate, AllowOwn},
		{model.RoleAnonymous, UserUpdate, Deny},

		// books belong to staff
		{model.RoleAdmin, BookRead, Allow},
		{model.RoleLibrarian, BookRead, Allow},
		{model.RoleMember, BookRead, Deny},
		{model.RoleAnonymous, BookRead, Deny},
		{model.RoleAdmin, BookWrite, Allow},
		{model.RoleLibrarian, BookWrite, Allow},
		{model.RoleMember, BookWrite, Deny},
		{model.RoleAnonymous, BookWrite, Deny},

		// categories readable by any authenticated role
		{model.RoleAdmin, CategoryRead, Allow},
		{model.RoleLibrarian, CategoryRead, Allow},
		{model.RoleMember, CategoryRead, Allow},
		{model.RoleAnonymous, CategoryRead, Deny},
		{model.RoleAdmin, CategoryWrite, Allow},
		{model.RoleLibrarian, CategoryWrite, Allow},
		{model.RoleMember, CategoryWrite, Deny},
		{model.RoleAnonymous, CategoryWrite, Deny},

		// ledger
		{model.RoleAdmin, BorrowCreate, Allow},
		{model.RoleLibrarian, BorrowCreate, Allow},
		{model.RoleMember, BorrowCreate, AllowOwn},
		{model.RoleAnonymous, BorrowCreate, Deny},
		{model.RoleAdmin, BorrowList, Allow},
		{model.RoleLibrarian, BorrowList, Allow},
		{model.RoleMember, BorrowList, AllowOwn},
		{model.RoleAnonymous, BorrowList, Deny},
		{model.RoleAdmin, BorrowReturn, Allow},
		{model.RoleLibrarian, BorrowReturn, Allow},
		{model.RoleMember, BorrowReturn, AllowOwn},
		{model.RoleAnonymous, BorrowReturn, Deny},
		{model.RoleAdmin, BorrowCheckDue, Allow},
		{model.RoleLibrarian, BorrowCheckDue, Deny},
		{model.RoleMember, BorrowCheckDue, Deny},
		{model.RoleAnonymous, BorrowCheckDue, Deny},
	}

	for _, tc := range cases {
		if got := Decide(tc.role, tc.action); got != tc.want {
			t.Errorf("Decide(%q, %q) = %v; want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestDecide_UnknownRoleDenies(t *testing.T) {
	if got := Decide(model.Role("superuser"), BookWrite); got != Deny {
		t.Errorf("unknown role should deny, got %v", got)
	}
}
