package controllers

import (
	"net/http"

	"github.com/hivehoney/aisla-sub000/api/middleware"
	"github.com/hivehoney/aisla-sub000/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "public", "status": "ok"}
		if reqID := middleware.RequestIDFromContext(r.Context()); reqID != "" {
			payload["request_id"] = reqID
		}
		responses.WriteSuccess(w, payload)
	}
}
