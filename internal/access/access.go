// Package access holds the pure authorization rules for document-scoped
// operations: owners hold full control, everyone else needs a grant whose
// permission level covers the requested action.
package access

type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

type Reason string

const (
	ReasonOwner                  Reason = "OWNER"
	ReasonGranted                Reason = "GRANTED"
	ReasonNotShared              Reason = "NOT_SHARED"
	ReasonInsufficientPermission Reason = "INSUFFICIENT_PERMISSION"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

// Grant is the slice of a sharing record the decision needs.
type Grant struct {
	GranteeID  string
	Permission Permission
}

// Evaluate applies the decision rule in order: ownership, grant presence,
// grant sufficiency. grant is nil when no sharing record exists for the user.
func Evaluate(userID, ownerID string, grant *Grant, required Permission) Decision {
	if userID != "" && userID == ownerID {
		return Decision{Allowed: true, Reason: ReasonOwner}
	}
	if grant == nil || grant.GranteeID != userID {
		return Decision{Allowed: false, Reason: ReasonNotShared}
	}
	if Satisfies(grant.Permission, required) {
		return Decision{Allowed: true, Reason: ReasonGranted}
	}
	return Decision{Allowed: false, Reason: ReasonInsufficientPermission}
}

// Satisfies reports whether a granted permission level covers the required
// one. Write implies read; read covers read only.
func Satisfies(granted, required Permission) bool {
	switch granted {
	case PermissionWrite:
		return required == PermissionRead || required == PermissionWrite
	case PermissionRead:
		return required == PermissionRead
	default:
		return false
	}
}

// Normalize maps arbitrary input to a valid permission, defaulting to read.
func Normalize(permission string) Permission {
	switch Permission(permission) {
	case PermissionRead, PermissionWrite:
		return Permission(permission)
	default:
		return PermissionRead
	}
}

// Valid reports whether the input names a member of the closed permission set.
func Valid(permission string) bool {
	switch Permission(permission) {
	case PermissionRead, PermissionWrite:
		return true
	default:
		return false
	}
}
