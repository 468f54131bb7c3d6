package mediation

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/alltimesound/customer-service-agent/agent/contract"
)

// coerceArgs rewrites the arguments a tool declared as record parameters
// from the generic mappings the model produced into the declared Go types.
// A value that cannot be coerced is kept as-is so the tool can surface its
// own validation error; coercion never fails the call.
func (p *Pipeline) coerceArgs(call *contract.ToolCall) {
	declared := call.Tool.RecordParams()
	if len(declared) == 0 || len(call.Args) == 0 {
		return
	}

	for name, want := range declared {
		raw, ok := call.Args[name]
		if !ok || raw == nil {
			continue
		}
		typed, err := coerceValue(raw, want)
		if err != nil {
			p.log.Warn().
				Str("tool", call.Tool.Name()).
				Str("param", name).
				Err(err).
				Msg("argument coercion failed, keeping raw value")
			continue
		}
		call.Args[name] = typed
	}
}

// coerceValue converts raw into an instance of want via a JSON round-trip.
// Values already of the declared type pass through, which keeps the stage
// idempotent when a hosting framework replays the pipeline. Unknown keys in
// a mapping are dropped rather than treated as a failure; models pad
// arguments with extra fields all the time.
func coerceValue(raw any, want reflect.Type) (any, error) {
	if reflect.TypeOf(raw) == want {
		return raw, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", raw, err)
	}

	target := reflect.New(want)
	if err := json.Unmarshal(encoded, target.Interface()); err != nil {
		return nil, fmt.Errorf("decode into %s: %w", want, err)
	}
	return target.Elem().Interface(), nil
}
