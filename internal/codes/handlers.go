package codes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/EmpoweredVote/EV-Population/internal/fips"
)

// CodeResponse describes one code.
type CodeResponse struct {
	Code      string        `json:"code"`
	Expanded  fips.Expanded `json:"expanded"`
	GEOID     string        `json:"geoid"`
	DatasetID string        `json:"dataset_id,omitempty"`
	Rest      string        `json:"rest,omitempty"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Parse *parseError `json:"parse,omitempty"`
}

type parseError struct {
	Kind     string `json:"kind"`
	Field    string `json:"field,omitempty"`
	Input    string `json:"input"`
	Expected int    `json:"expected,omitempty"`
	Found    int    `json:"found,omitempty"`
	Char     string `json:"char,omitempty"`
	Value    uint64 `json:"value,omitempty"`
	Capacity uint64 `json:"capacity,omitempty"`
}

func describe(c fips.Code) CodeResponse {
	resp := CodeResponse{
		Code:     strconv.FormatUint(c.Uint64(), 10),
		Expanded: c.Expand(),
		GEOID:    c.GEOID(),
	}
	switch c.Category() {
	case fips.Home, fips.Workplace, fips.PublicSchool, fips.PrivateSchool:
		resp.DatasetID = c.DatasetID()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var pe *fips.ParseError
	if errors.As(err, &pe) {
		resp.Parse = &parseError{
			Kind:     pe.Kind.String(),
			Field:    pe.Field,
			Input:    pe.Input,
			Expected: pe.Expected,
			Found:    pe.Found,
			Value:    pe.Value,
			Capacity: pe.Capacity,
		}
		if pe.Char != 0 {
			resp.Parse.Char = string(pe.Char)
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

// DecodeHandler handles GET /fips/{code} where code is the packed decimal value.
func DecodeHandler(w http.ResponseWriter, r *http.Request) {
	c, err := fips.ParseCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(c))
}

// ParseHandler handles GET /fips/parse?kind=home&id=482012231000017.
// kind is a setting category or "region" for a 2, 5 or 11 digit GEOID.
func ParseHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if kind := q.Get("kind"); kind == "region" {
		c, level, err := fips.ParseRegion(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			CodeResponse
			Level fips.Level `json:"level"`
		}{describe(c), level})
		return
	}

	category, err := fips.ParseCategory(q.Get("kind"))
	if err != nil || category == fips.Unspecified {
		http.Error(w, "kind must be home, workplace, school, tract or region", http.StatusBadRequest)
		return
	}

	rest, c, err := fips.ParseForCategory(category, id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := describe(c)
	resp.Rest = rest
	writeJSON(w, http.StatusOK, resp)
}
