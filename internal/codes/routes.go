// Package codes serves FIPS code decoding and dataset id parsing over HTTP.
package codes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/parse", ParseHandler)
	r.Get("/{code}", DecodeHandler)

	return r
}
