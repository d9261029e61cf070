// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
)

// Agent is an HTTP client with its own cookie jar, so each agent carries
// its own session against a test server.
type Agent struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

// NewAgent returns an anonymous agent for srv.
func NewAgent(t *testing.T, srv *httptest.Server) *Agent {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &Agent{t: t, srv: srv, client: &http.Client{Jar: jar}}
}

// Do sends body (JSON encoded unless it is a string or nil) and decodes
// the JSON response into a map.
func (a *Agent) Do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	if err != nil {
		a.t.Fatalf("building request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		a.t.Fatalf("%s %s: decoding response: %v", method, path, err)
	}
	return resp.StatusCode, out
}

// Login posts credentials to /auth/login and fails the test unless the
// login succeeds.
func (a *Agent) Login(username, password string) {
	a.t.Helper()
	status, body := a.Do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		a.t.Fatalf("login as %s: status %d, body %v", username, status, body)
	}
}

// Cookie returns the named cookie the agent holds for the server, or nil.
func (a *Agent) Cookie(name string) *http.Cookie {
	req, _ := http.NewRequest(http.MethodGet, a.srv.URL, nil)
	for _, c := range a.client.Jar.Cookies(req.URL) {
		if c.Name == name {
			return c
		}
	}
	return nil
}
