package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(ctx context.Context, scenarioID string) (*engine.MatchState, error) {
	var body interface{}
	if scenarioID != "" {
		body = map[string]string{"scenario_id": scenarioID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, eris.Wrap(err, "create session")
	}

	c.sessionID = info.ID
	return info.State, nil
}

// Resume switches to an existing session and returns its state
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.MatchState, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.MatchState, error) {
	var state engine.MatchState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, eris.Wrap(err, "get state")
	}
	return &state, nil
}

func (c *Client) BulkClick(ctx context.Context, cells []engine.Cell) (*service.BulkClickResult, error) {
	var result service.BulkClickResult
	body := map[string]interface{}{"cells": cells}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/bulk-click"), body, &result); err != nil {
		return nil, eris.Wrap(err, "bulk click")
	}
	return &result, nil
}

func (c *Client) EndTurn(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "/end-turn")
}

func (c *Client) Advance(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "/advance")
}

func (c *Client) action(ctx context.Context, path string) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath(path), nil, &result); err != nil {
		return nil, eris.Wrapf(err, "post %s", path)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return eris.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return eris.Errorf("%s: %s", resp.Status, string(data))
	}

	if err := json.Unmarshal(data, result); err != nil {
		return eris.Wrap(err, "parse response")
	}
	return nil
}
