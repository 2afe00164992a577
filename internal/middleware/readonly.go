package middleware

import (
	"encoding/json"
	"net/http"

	"homeshare/internal/model"
)

// RequireWrite rejects mutating requests while the share runs read-only.
func RequireWrite(readOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !readOnly {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(model.APIResponse{
				Success: false,
				Error: &model.APIError{
					Code:    "READ_ONLY",
					Message: "server is running in read-only mode",
				},
			})
		})
	}
}
