package authz

import "net/http"

// Action is the typed set of operations the policy rules on. Anything that
// does not map onto one of these values is denied outright.
type Action int

const (
	ActionList Action = iota
	ActionCreate
	ActionRetrieve
	ActionUpdate
	ActionPartialUpdate
	ActionDestroy
	ActionAddContributor
	ActionRemoveContributor
	ActionOptions
)

// String returns the action name used in logs and metric labels.
func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionCreate:
		return "create"
	case ActionRetrieve:
		return "retrieve"
	case ActionUpdate:
		return "update"
	case ActionPartialUpdate:
		return "partial_update"
	case ActionDestroy:
		return "destroy"
	case ActionAddContributor:
		return "add_contributor"
	case ActionRemoveContributor:
		return "remove_contributor"
	case ActionOptions:
		return "options"
	}
	return "unknown"
}

// Writes reports whether the action mutates its target object.
func (a Action) Writes() bool {
	switch a {
	case ActionUpdate, ActionPartialUpdate, ActionDestroy,
		ActionAddContributor, ActionRemoveContributor:
		return true
	}
	return false
}

// CollectionActionForMethod maps an HTTP method on a collection route to a
// typed action. ok is false for methods the policy does not enumerate.
func CollectionActionForMethod(method string) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionList, true
	case http.MethodPost:
		return ActionCreate, true
	case http.MethodOptions:
		return ActionOptions, true
	}
	return 0, false
}

// ObjectActionForMethod maps an HTTP method on a detail route to a typed
// action. ok is false for methods the policy does not enumerate.
func ObjectActionForMethod(method string) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionRetrieve, true
	case http.MethodPut:
		return ActionUpdate, true
	case http.MethodPatch:
		return ActionPartialUpdate, true
	case http.MethodDelete:
		return ActionDestroy, true
	case http.MethodOptions:
		return ActionOptions, true
	}
	return 0, false
}

// Resource is the kind of entity a permission check targets.
type Resource int

const (
	ResourceUser Resource = iota
	ResourceProject
	ResourceIssue
	ResourceComment
)

// String returns the resource name used in logs and metric labels.
func (r Resource) String() string {
	switch r {
	case ResourceUser:
		return "user"
	case ResourceProject:
		return "project"
	case ResourceIssue:
		return "issue"
	case ResourceComment:
		return "comment"
	}
	return "unknown"
}
