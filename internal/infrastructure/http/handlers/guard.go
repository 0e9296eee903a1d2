package handlers

import (
	"net/http"

	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
)

// permitCollection derives the typed action from the request method, runs
// the collection-level permission check, records the outcome, and writes
// the failure response on deny. Returns true when the request may proceed.
// An unenumerated method is a deny, matching the engine's default.
func permitCollection(w http.ResponseWriter, r *http.Request, engine *authz.Engine, res authz.Resource, rc authz.Context) bool {
	act, ok := authz.CollectionActionForMethod(r.Method)
	if !ok {
		writeDeny(w, rc)
		return false
	}
	dec, err := engine.CheckCollection(r.Context(), res, act, rc)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return false
	}
	middleware.RecordAuthzDecision(res.String(), act.String(), dec.String())
	if dec != authz.Allow {
		writeDeny(w, rc)
		return false
	}
	return true
}

// permitObject is permitCollection for object-level checks.
func permitObject(w http.ResponseWriter, r *http.Request, engine *authz.Engine, res authz.Resource, target authz.Target, rc authz.Context) bool {
	act, ok := authz.ObjectActionForMethod(r.Method)
	if !ok {
		writeDeny(w, rc)
		return false
	}
	return permitObjectAction(w, r, engine, res, act, target, rc)
}

// permitObjectAction is the explicit-action form for the membership
// routes, whose actions have no HTTP-method equivalent.
func permitObjectAction(w http.ResponseWriter, r *http.Request, engine *authz.Engine, res authz.Resource, act authz.Action, target authz.Target, rc authz.Context) bool {
	dec, err := engine.CheckObject(r.Context(), res, act, target, rc)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return false
	}
	middleware.RecordAuthzDecision(res.String(), act.String(), dec.String())
	if dec != authz.Allow {
		writeDeny(w, rc)
		return false
	}
	return true
}

func writeDeny(w http.ResponseWriter, rc authz.Context) {
	if !rc.Authenticated() {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	writeErr(w, http.StatusForbidden, ErrCodeForbidden, "you do not have permission to perform this action")
}
