// Package access decides whether a principal may act on an owned resource.
package access

import (
	"fmt"

	"github.com/mcoot/ranktracker/internal/model"
)

// Operation names a guarded action
type Operation string

const (
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpEdit   Operation = "edit"
)

// Authorize allows the operation iff the principal owns the resource or is an
// Admin. ownerID must be the persisted owner, never one taken from a payload.
func Authorize(p model.Principal, ownerID model.UserID, op Operation) error {
	if !p.IsAuthenticated() {
		return model.ErrUnauthenticated
	}
	if CanModify(p, ownerID) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, model.ErrForbidden)
}

// CanModify reports whether Authorize would allow any operation on a resource
// owned by ownerID
func CanModify(p model.Principal, ownerID model.UserID) bool {
	if !p.IsAuthenticated() {
		return false
	}
	return p.ID == ownerID || p.IsAdmin()
}
