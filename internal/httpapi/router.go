package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the routes. Everything except /version sits behind
// basic auth.
func NewRouter(h *Handler, apiUser, apiPassword string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/version", h.Version).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(BasicAuth(apiUser, apiPassword))

	api.HandleFunc("/jobs", h.CreateJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{jobId}", h.GetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{jobId}/send", h.SendJob).Methods(http.MethodPost)
	api.HandleFunc("/batches/{batchId}", h.GetBatch).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)

	return r
}
