package handlers

import "net/http"

// NewHomeHandler answers the service root with a plain-text banner.
func NewHomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Welcome to the User Management API"))
	}
}
