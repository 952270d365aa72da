// Package access decides whether verified claims may act on a resource.
//
// Two policies exist and callers pick one per operation:
//
//   - CanAccess: the requester owns the resource or holds one of its allowed roles.
//   - RequireOwnerRole: the requester's role is exactly "owner"; used for
//     privileged mutations of shared configuration.
//
// Neither consults a store nor looks at request payloads.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/skyauth/internal/common"
	"github.com/dmitrijs2005/skyauth/internal/server/models"
)

// Decision is the outcome of a policy check. The zero value denies.
type Decision struct {
	Allowed bool
	Reason  string
}

// Permit returns an allowing Decision.
func Permit() Decision { return Decision{Allowed: true} }

// Deny returns a denying Decision with a reason safe to show the caller.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err returns nil for a permit and an error wrapping
// common.ErrPermissionDenied for a deny.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == "" {
		return common.ErrPermissionDenied
	}
	return fmt.Errorf("%w: %s", common.ErrPermissionDenied, d.Reason)
}

// Resource is the ownership metadata a policy needs.
type Resource struct {
	OwnerID      string
	AllowedRoles []string
}

// CanAccess permits iff claims.UserID equals ownerID or claims.Role is one of
// allowedRoles. An empty user id never matches an empty owner id.
func CanAccess(claims models.Claims, ownerID string, allowedRoles []string) Decision {
	if claims.UserID != "" && claims.UserID == ownerID {
		return Permit()
	}
	for _, role := range allowedRoles {
		if claims.Role != "" && claims.Role == role {
			return Permit()
		}
	}
	return Deny("not the owner and role not allowed")
}

// CanAccessResource is CanAccess over a Resource.
func CanAccessResource(claims models.Claims, r Resource) Decision {
	return CanAccess(claims, r.OwnerID, r.AllowedRoles)
}

// RequireOwnerRole permits iff claims.Role is exactly common.OwnerRole.
func RequireOwnerRole(claims models.Claims) Decision {
	if claims.Role == common.OwnerRole {
		return Permit()
	}
	return Deny("only owner can perform this action")
}
