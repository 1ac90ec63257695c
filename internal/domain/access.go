package domain

import "github.com/google/uuid"

// Access classifies a caller relative to an owned resource.
type Access int

const (
	AccessAnonymous Access = iota
	AccessNonOwner
	AccessOwner
)

// ResolveAccess compares the caller identity (nil for anonymous requests)
// against a resource's owning user.
func ResolveAccess(caller *uuid.UUID, owner uuid.UUID) Access {
	if caller == nil {
		return AccessAnonymous
	}
	if *caller == owner {
		return AccessOwner
	}
	return AccessNonOwner
}

// CanRead reports whether the caller may read a resource with the given
// visibility. Owners always can; everyone else only when it is public.
func (a Access) CanRead(v Visibility) bool {
	if a == AccessOwner {
		return true
	}
	return v == VisibilityPublic
}

// CanWrite reports whether the caller may mutate the resource. Visibility
// never grants write access to a non-owner.
func (a Access) CanWrite() bool {
	return a == AccessOwner
}

func (a Access) IsOwner() bool {
	return a == AccessOwner
}
