// Package tool holds the domain tool catalog the specialists expose to the
// model: declared schemas plus executors over the record store. Mock tools
// return fabricated but fully-typed results behind the same interface as
// storage-backed ones.
package tool

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type runFunc func(ctx context.Context, args map[string]any) (any, error)

// def is the concrete contract.Tool. records names the parameters the
// mediation layer coerces into typed values before run sees them.
type def struct {
	name    string
	info    *schema.ToolInfo
	records map[string]reflect.Type
	run     runFunc
}

func (d *def) Name() string                          { return d.name }
func (d *def) Info() *schema.ToolInfo                { return d.info }
func (d *def) RecordParams() map[string]reflect.Type { return d.records }

func (d *def) Execute(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	return d.run(ctx, args)
}

func newTool(name, desc string, params map[string]*schema.ParameterInfo, run runFunc) *def {
	return &def{
		name: name,
		info: &schema.ToolInfo{
			Name:        name,
			Desc:        desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		run: run,
	}
}

func (d *def) withRecords(records map[string]reflect.Type) *def {
	d.records = records
	return d
}

/* ----------------------------- argument access ---------------------------- */

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

// equalsFold compares identifiers case-insensitively; the mediation layer
// lowercases string arguments, stored values keep their original casing.
func equalsFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

/* ------------------------------ result shapes ----------------------------- */

// Result is the uniform envelope every tool returns. Domain payloads ride in
// Data; failures that are business outcomes (not errors) set Success=false
// with a message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func okMsg(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(format string, a ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, a...)}
}
