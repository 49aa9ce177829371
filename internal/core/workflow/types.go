// Package workflow contains the pure business logic of the approval-gated work item lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

import "fmt"

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// RequestKind is the transition a member asks the owner to approve.
type RequestKind string

const (
	KindAssign     RequestKind = "assign"
	KindUnassign   RequestKind = "unassign"
	KindCompletion RequestKind = "completion"
)

// ParseRequestKind validates a request kind string.
func ParseRequestKind(s string) (RequestKind, error) {
	switch k := RequestKind(s); k {
	case KindAssign, KindUnassign, KindCompletion:
		return k, nil
	default:
		return "", fmt.Errorf("unknown request kind %q (want assign, unassign or completion)", s)
	}
}

// InitialStatus returns the status of a freshly created work item.
func InitialStatus() Status {
	return StatusPending
}

// Role selects which ledger rows a caller may see or remove.
// The zero value is a member role with no username and matches nothing.
type Role struct {
	owner    bool
	username string
}

// OwnerRole is the unrestricted view held by the project owner.
func OwnerRole() Role {
	return Role{owner: true}
}

// MemberRole restricts the view to rows filed by username.
func MemberRole(username string) Role {
	return Role{username: username}
}

// IsOwner reports whether the role is the unrestricted owner view.
func (r Role) IsOwner() bool {
	return r.owner
}

// Username returns the member username; empty for the owner role.
func (r Role) Username() string {
	return r.username
}

func (r Role) String() string {
	if r.owner {
		return "owner"
	}
	return "member(" + r.username + ")"
}
