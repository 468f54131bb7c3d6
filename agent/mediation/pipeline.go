// Package mediation gates every model and tool call the agents make:
// argument coercion, value normalization, tenant isolation, routing
// topology, and model-call rate limiting. It is wired explicitly and holds
// no global state, so any agent-hosting integration can invoke its stages
// around its own turn lifecycle.
package mediation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alltimesound/customer-service-agent/agent/contract"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
)

// ProfileLoader produces the serialized customer record bound to sessions
// that start without one.
type ProfileLoader func(ctx context.Context) (string, error)

// Pipeline implements contract.Pipeline. Stages run in a fixed order and
// each one only sees the arguments as left by the previous stage.
type Pipeline struct {
	loadProfile ProfileLoader
	limiter     *RateLimiter
	log         zerolog.Logger
}

func New(loadProfile ProfileLoader, limiter *RateLimiter, log zerolog.Logger) (*Pipeline, error) {
	if loadProfile == nil {
		return nil, fmt.Errorf("profile loader is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	return &Pipeline{
		loadProfile: loadProfile,
		limiter:     limiter,
		log:         log.With().Str("component", "mediation").Logger(),
	}, nil
}

// BeforeTurn binds the default customer profile when the session carries
// none. A session that already has a profile is left untouched.
func (p *Pipeline) BeforeTurn(ctx context.Context, sess *sessionx.State) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if sess.HasProfile() {
		return nil
	}

	serialized, err := p.loadProfile(ctx)
	if err != nil {
		return fmt.Errorf("load default profile: %w", err)
	}
	sess.BindProfile(serialized, p.limiter.now())
	p.log.Debug().Str("session_id", sess.SessionID).Msg("bound default customer profile")
	return nil
}

// BeforeModel charges one model call against the session's fixed window,
// blocking until the window rolls over when the quota is spent.
func (p *Pipeline) BeforeModel(ctx context.Context, sess *sessionx.State) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	return p.limiter.Wait(ctx, sess)
}

// BeforeTool sanitizes call.Args in place and returns a non-empty denial
// message when the call must not reach the tool. Coercion and normalization
// always run; a denial from the tenant check short-circuits execution.
func (p *Pipeline) BeforeTool(ctx context.Context, call *contract.ToolCall, sess *sessionx.State) string {
	if call == nil || call.Tool == nil {
		return ""
	}

	p.coerceArgs(call)
	lowercaseValues(call.Args)

	if denial := checkTenant(call, sess); denial != "" {
		p.log.Warn().
			Str("session_id", sess.SessionID).
			Str("agent", string(call.Agent)).
			Str("tool", call.Tool.Name()).
			Str("denial", denial).
			Msg("tool call denied")
		return denial
	}

	p.guardTransfer(call)
	return ""
}

// AfterTool post-processes a tool result. Today it only logs; results flow
// through unchanged.
func (p *Pipeline) AfterTool(ctx context.Context, call *contract.ToolCall, sess *sessionx.State, result any) any {
	if call != nil && call.Tool != nil {
		p.log.Debug().
			Str("session_id", sess.SessionID).
			Str("agent", string(call.Agent)).
			Str("tool", call.Tool.Name()).
			Msg("tool call completed")
	}
	return result
}

var _ contract.Pipeline = (*Pipeline)(nil)
