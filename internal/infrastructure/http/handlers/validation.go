package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// validate checks request DTO struct tags; shared across handlers.
var validate = validator.New()

const defaultListLimit = 20
const maxListLimit = 100

// listParams reads limit/offset query parameters with the shared bounds.
func listParams(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
			if limit > maxListLimit {
				limit = maxListLimit
			}
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
