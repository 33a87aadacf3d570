// Package client talks to the /api/ros2 command endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"robot_dashboard/internal/logger"
	"robot_dashboard/internal/models"
)

const (
	DefaultCommandPath = "/api/ros2"

	fallbackErrorMessage = "failed to execute command"
	// exit code reported by silent execution when no HTTP status is available
	networkFailureExitCode = 1
	maxErrorBody           = 64 * 1024
)

// RequestError is a non-2xx answer from the command endpoint.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}

// Client executes commands through the bridge over HTTP.
type Client struct {
	baseURL string
	path    string
	client  *http.Client
	log     *logger.Logger
}

func New(baseURL string, log *logger.Logger) *Client {
	return NewWithClient(baseURL, DefaultCommandPath, &http.Client{}, log)
}

func NewWithClient(baseURL, path string, client *http.Client, log *logger.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	if path == "" {
		path = DefaultCommandPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		client:  client,
		log:     logger.OrNop(log),
	}
}

// Execute runs command and fails on any non-2xx status or network error.
func (c *Client) Execute(ctx context.Context, command string) (models.CommandResult, error) {
	body, err := json.Marshal(models.CommandRequest{Command: command})
	if err != nil {
		return models.CommandResult{}, fmt.Errorf("encode command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return models.CommandResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.CommandResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.CommandResult{}, decodeRequestError(resp)
	}

	var out models.CommandResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.CommandResult{}, fmt.Errorf("decode command response: %w", err)
	}
	return models.CommandResult{Output: out.Output, Error: out.Error}, nil
}

// ExecuteSilent never fails. Transport and HTTP errors are folded into a result
// with Failed set and the message in Output.
func (c *Client) ExecuteSilent(ctx context.Context, command string) models.CommandResult {
	res, err := c.Execute(ctx, command)
	if err == nil {
		return res
	}
	code := networkFailureExitCode
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		code = reqErr.StatusCode
	}
	c.log.Debugw("silent_command_failed", "command", command, "exit_code", code, "err", err)
	return models.CommandResult{Failed: true, Output: err.Error(), ExitCode: code}
}

func decodeRequestError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	reqErr := &RequestError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &payload); err == nil {
		reqErr.Message = payload.Error
	}
	return reqErr
}
