// Package dispatch decodes the line-oriented request format used by the
// call command and routes decoded requests through a closed table of
// supported operations.
package dispatch

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nbserve/jupyter-mcp/internal/errors"
)

const (
	methodPrefix = "$method:"
	paramPrefix  = "$pram:"
)

// parseState is the parser's position in a request block.
type parseState int

const (
	awaitingMethod parseState = iota
	awaitingParamName
	accumulatingValue
)

// Request is one decoded invocation: a method name plus raw string
// parameters keyed by name.
type Request struct {
	Method string
	Params Params
}

// Params holds raw parameter values. A parameter whose value is the literal
// "None" is treated as absent and never stored.
type Params map[string]string

// Parse decodes one request block. The format is line-oriented: a
// "$method:" line names the operation, each "$pram:" line opens a named
// parameter, and every following unprefixed line belongs to that
// parameter's value until the next prefixed line. Value lines are joined
// with newlines and trimmed of surrounding whitespace.
func Parse(text string) (Request, error) {
	req := Request{Params: Params{}}
	state := awaitingMethod

	var name string
	var value []string

	flush := func() {
		if state != accumulatingValue {
			return
		}
		v := strings.TrimSpace(strings.Join(value, "\n"))
		if v != "None" {
			req.Params[name] = v
		}
		value = nil
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, methodPrefix):
			flush()
			req.Method = strings.TrimSpace(strings.TrimPrefix(line, methodPrefix))
			state = awaitingParamName

		case strings.HasPrefix(line, paramPrefix):
			flush()
			name = strings.TrimSpace(strings.TrimPrefix(line, paramPrefix))
			state = accumulatingValue

		default:
			if state == accumulatingValue {
				value = append(value, line)
			}
			// Lines before the method or between it and the first
			// parameter carry no meaning and are dropped.
		}
	}
	flush()

	if req.Method == "" {
		return Request{}, errors.Validation("request block has no $method: line")
	}
	return req, nil
}

// Get returns the raw value for name.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// String returns the value for name or def when absent.
func (p Params) String(name, def string) string {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Require returns the value for name or a validation error when absent.
func (p Params) Require(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", errors.Validation("missing required parameter %q", name)
	}
	return v, nil
}

// Int parses a required integer parameter.
func (p Params) Int(name string) (int, error) {
	raw, err := p.Require(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Validation("parameter %q is not an integer: %q", name, raw)
	}
	return n, nil
}

// IntOr parses an integer parameter, returning def when absent.
func (p Params) IntOr(name string, def int) (int, error) {
	if _, ok := p[name]; !ok {
		return def, nil
	}
	return p.Int(name)
}

// OptionalInt parses an integer parameter, returning nil when absent.
func (p Params) OptionalInt(name string) (*int, error) {
	if _, ok := p[name]; !ok {
		return nil, nil
	}
	n, err := p.Int(name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// IntList decodes a JSON integer array. Python-style literals with single
// quotes or None entries are tolerated.
func (p Params) IntList(name string) ([]int, error) {
	raw, err := p.Require(name)
	if err != nil {
		return nil, err
	}
	cleaned := strings.ReplaceAll(raw, "'", `"`)
	cleaned = strings.ReplaceAll(cleaned, "None", "null")

	var vals []int
	if err := json.Unmarshal([]byte(cleaned), &vals); err != nil {
		return nil, errors.Validation("parameter %q is not an integer list: %q", name, raw)
	}
	return vals, nil
}

// Enum returns the value for name when it is one of allowed; an absent or
// unrecognized value falls back to the first allowed entry.
func (p Params) Enum(name string, allowed ...string) string {
	raw, ok := p[name]
	if !ok {
		return allowed[0]
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	return allowed[0]
}
