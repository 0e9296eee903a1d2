// Package authz implements the authorization engine: a pure decision
// function over (actor, action, resource kind, target, resolved project).
//
// Three policies cover the whole surface. Users are self-service: anyone
// may sign up, authenticated users may list, and only the account itself
// may read or change its record. Projects grant read to contributors and
// write (including membership management) to the author alone. Issues and
// comments share one policy parameterized by the owning project: project
// membership gates reads and creation, the object's own author gates
// writes. Whenever the facts required by a rule are missing the answer is
// Deny.
package authz

import (
	"context"

	"github.com/softdeskhq/softdesk/internal/domain"
)

// Decision is the outcome of a permission check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// MembershipChecker answers whether a user is a contributor of a project,
// with the author always counting as one.
type MembershipChecker interface {
	IsContributor(ctx context.Context, userID domain.UserID, project *domain.Project) (bool, error)
}

// Engine evaluates the permission policies. Membership facts come from the
// contributor registry; everything else is carried in by the caller.
type Engine struct {
	members MembershipChecker
}

// NewEngine builds the engine on a membership checker.
func NewEngine(members MembershipChecker) *Engine {
	return &Engine{members: members}
}

// CheckCollection decides a collection-level action (list, create, and the
// membership actions addressed at the project envelope).
func (e *Engine) CheckCollection(ctx context.Context, res Resource, act Action, rc Context) (Decision, error) {
	if act == ActionOptions {
		return Allow, nil
	}
	switch res {
	case ResourceUser:
		return e.userCollection(act, rc), nil
	case ResourceProject:
		return e.projectCollection(act, rc), nil
	case ResourceIssue, ResourceComment:
		return e.nestedCollection(ctx, act, rc)
	}
	return Deny, nil
}

// CheckObject decides an action addressed at a single resource instance.
func (e *Engine) CheckObject(ctx context.Context, res Resource, act Action, target Target, rc Context) (Decision, error) {
	if act == ActionOptions {
		return Allow, nil
	}
	if !rc.Authenticated() {
		return Deny, nil
	}
	switch res {
	case ResourceUser:
		return e.userObject(act, target, rc), nil
	case ResourceProject:
		return e.projectObject(ctx, act, rc)
	case ResourceIssue, ResourceComment:
		return e.nestedObject(ctx, act, target, rc)
	}
	return Deny, nil
}

// userCollection: signup is for anonymous actors only, listing for
// authenticated ones.
func (e *Engine) userCollection(act Action, rc Context) Decision {
	switch act {
	case ActionCreate:
		if !rc.Authenticated() {
			return Allow
		}
	case ActionList:
		if rc.Authenticated() {
			return Allow
		}
	}
	return Deny
}

func (e *Engine) userObject(act Action, target Target, rc Context) Decision {
	switch act {
	case ActionRetrieve, ActionUpdate, ActionPartialUpdate, ActionDestroy:
		if target.ID == rc.Actor.ID {
			return Allow
		}
	}
	return Deny
}

// projectCollection: any authenticated actor may list projects or create
// one (becoming its author).
func (e *Engine) projectCollection(act Action, rc Context) Decision {
	switch act {
	case ActionList, ActionCreate:
		if rc.Authenticated() {
			return Allow
		}
	}
	return Deny
}

func (e *Engine) projectObject(ctx context.Context, act Action, rc Context) (Decision, error) {
	if rc.Project == nil {
		return Deny, nil
	}
	switch act {
	case ActionRetrieve:
		ok, err := e.members.IsContributor(ctx, rc.Actor.ID, rc.Project)
		if err != nil {
			return Deny, err
		}
		if ok {
			return Allow, nil
		}
	case ActionUpdate, ActionPartialUpdate, ActionDestroy,
		ActionAddContributor, ActionRemoveContributor:
		if rc.Actor.ID == rc.Project.AuthorID {
			return Allow, nil
		}
	}
	return Deny, nil
}

// nestedCollection gates issue/comment listing and creation on project
// membership. A missing project context is a hard deny.
func (e *Engine) nestedCollection(ctx context.Context, act Action, rc Context) (Decision, error) {
	if rc.Project == nil || !rc.Authenticated() {
		return Deny, nil
	}
	switch act {
	case ActionList, ActionCreate:
		ok, err := e.members.IsContributor(ctx, rc.Actor.ID, rc.Project)
		if err != nil {
			return Deny, err
		}
		if ok {
			return Allow, nil
		}
	}
	return Deny, nil
}

// nestedObject: reads follow project membership, writes follow the
// object's own author. A project author who did not write the issue or
// comment cannot modify it.
func (e *Engine) nestedObject(ctx context.Context, act Action, target Target, rc Context) (Decision, error) {
	if rc.Project == nil {
		return Deny, nil
	}
	switch act {
	case ActionRetrieve:
		ok, err := e.members.IsContributor(ctx, rc.Actor.ID, rc.Project)
		if err != nil {
			return Deny, err
		}
		if ok {
			return Allow, nil
		}
	case ActionUpdate, ActionPartialUpdate, ActionDestroy:
		if target.AuthorID == rc.Actor.ID {
			return Allow, nil
		}
	}
	return Deny, nil
}
