// Package policy is the per-request authorization layer. Decisions depend
// only on the caller's role and linked student id, never on whether the
// target record exists.
package policy

import (
	"fmt"

	"anoa.com/studentrecords/internal/model"
	"anoa.com/studentrecords/pkg/apperror"
	"github.com/google/uuid"
)

// Actor is the caller identity extracted from the bearer token. StudentID is
// nil for accounts without a linked student record (admins).
type Actor struct {
	UserID    uuid.UUID
	Role      string
	StudentID *uuid.UUID
}

// Action is one request category the policy engine rules on.
type Action string

const (
	ActionReadStudent   Action = "student:read"
	ActionUpdateStudent Action = "student:update"
	ActionCreateStudent Action = "student:create"
	ActionDeleteStudent Action = "student:delete"
	ActionUploadPhoto   Action = "student:photo"
	ActionWriteGrade    Action = "grade:write"
	ActionWriteProject  Action = "project:write"
	ActionWriteLoan     Action = "loan:write"
	ActionViewStats     Action = "stats:view"
	ActionListStudents  Action = "student:list"
)

type rule struct {
	// anyAuthenticated allows every logged-in caller regardless of target.
	anyAuthenticated bool
	// ownerAllowed allows a student whose linked id matches the target.
	ownerAllowed bool
}

// rules is the predicate table. Admin is always allowed and never consults
// it. Grade mutation, student create/delete and statistics stay admin-only
// even on the caller's own record. Students keep full rights over their own
// projects and loans, which means a student can grade their own project
// through the generic update path; that matches the historical behavior.
var rules = map[Action]rule{
	ActionReadStudent:   {ownerAllowed: true},
	ActionUpdateStudent: {ownerAllowed: true},
	ActionUploadPhoto:   {ownerAllowed: true},
	ActionWriteProject:  {ownerAllowed: true},
	ActionWriteLoan:     {ownerAllowed: true},
	ActionCreateStudent: {},
	ActionDeleteStudent: {},
	ActionWriteGrade:    {},
	ActionViewStats:     {},
	ActionListStudents:  {anyAuthenticated: true},
}

// Authorize decides whether the actor may perform action against the student
// identified by target. Denials are always apperror.ErrForbidden so the
// response cannot distinguish a forbidden record from a missing one.
func Authorize(actor Actor, target uuid.UUID, action Action) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}

	r, ok := rules[action]
	if !ok {
		return fmt.Errorf("unknown action %s: %w", action, apperror.ErrForbidden)
	}

	if r.anyAuthenticated {
		return nil
	}

	if r.ownerAllowed && actor.StudentID != nil && *actor.StudentID == target {
		return nil
	}

	return fmt.Errorf("%s: %w", action, apperror.ErrForbidden)
}
