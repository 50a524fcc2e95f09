package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailabs/kapsel/internal/errors"
)

// decode maps a tool call's arguments onto the request struct for that
// tool. A failure is a caller problem, so it comes back as a structured
// VALIDATION error that handlers can hand straight to errorResult.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, errors.NewValidation("arguments are not valid JSON: " + err.Error())
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.NewValidation("malformed arguments: " + err.Error())
	}
	return out, nil
}
