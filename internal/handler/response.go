// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is the body of every response:
// {error, message, success} plus at most one payload key.
type envelope struct {
	Error   *string
	Message string
	Success bool
	key     string
	payload any
}

func (e envelope) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"error":   e.Error,
		"message": e.Message,
		"success": e.Success,
	}
	if e.key != "" {
		m[e.key] = e.payload
	}
	return json.Marshal(m)
}

// respond writes a success envelope. key may be empty.
func respond(w http.ResponseWriter, r *http.Request, status int, message, key string, payload any) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Message: message, Success: true, key: key, payload: payload})
}

// fail writes a failure envelope. When key is set the payload is null.
func fail(w http.ResponseWriter, r *http.Request, status int, errMsg, key string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Error: &errMsg, key: key})
}

// decodeJSON decodes a JSON object body into v, keeping numbers as
// json.Number so integers survive without float rounding.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &inputError{msg: MsgInvalidJSON, err: err}
	}
	if dec.More() {
		return &inputError{msg: MsgInvalidJSON, err: errors.New("trailing data after JSON object")}
	}
	return nil
}

// decodeObject decodes a body that must be a JSON object.
func decodeObject(r *http.Request) (map[string]any, error) {
	var payload map[string]any
	if err := decodeJSON(r, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &inputError{msg: MsgInvalidJSON}
	}
	return payload, nil
}
