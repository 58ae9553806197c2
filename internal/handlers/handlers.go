// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the catalog API.
// Handlers are grouped by resource and receive their stores through small
// interfaces so they can be tested without a database.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"attrcatalog/internal/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error     string   `json:"error"`
	IDs       []string `json:"ids,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// writeJSON writes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// writeError maps err to a status code. Validation errors answer 400,
// missing records 404, conflicts 409. Anything else is logged and answers
// 500 with an opaque message and the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := chimw.GetReqID(r.Context())

	var ve *models.ValidationError
	var ce *models.ConflictError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, IDs: ve.IDs, RequestID: reqID})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), RequestID: reqID})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Message, RequestID: reqID})
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", RequestID: reqID})
	}
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected so
// typos surface instead of being ignored.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Invalid("request body is empty")
		}
		return models.Invalid("malformed JSON body: " + err.Error())
	}
	return nil
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.Invalid("invalid id", raw)
	}
	return id, nil
}
