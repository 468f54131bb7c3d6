// Package coordinator owns a conversation turn end to end: it loads the
// session, binds the customer profile, runs the hub-and-spoke agent loop,
// and persists the session afterwards.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	contractx "github.com/alltimesound/customer-service-agent/agent/contract"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
	"github.com/alltimesound/customer-service-agent/pkg/langfuse"
)

var (
	ErrInvalidMessage = errors.New("message text is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// maxHandoffs bounds the hub-and-spoke loop within one turn: coordinator to
// specialist, back, and one re-route is the deepest legitimate chain.
const maxHandoffs = 4

type Service struct {
	sessions sessionx.Store
	registry contractx.Registry
	pipeline contractx.Pipeline
	tracer   langfuse.Tracer

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	now func() time.Time
	log zerolog.Logger
}

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

type graphState struct {
	Input GraphInput
	Sess  *sessionx.State
	Reply string
}

func New(
	sessions sessionx.Store,
	registry contractx.Registry,
	pipeline contractx.Pipeline,
	tracer langfuse.Tracer,
	log zerolog.Logger,
) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	if pipeline == nil {
		return nil, errors.New("mediation pipeline is required")
	}
	if tracer == nil {
		tracer = langfuse.NopTracer{}
	}

	s := &Service{
		sessions: sessions,
		registry: registry,
		pipeline: pipeline,
		tracer:   tracer,
		now:      time.Now,
		log:      log.With().Str("component", "coordinator").Logger(),
	}

	graphRunner, err := s.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage runs one conversation turn and returns the assistant reply.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	out, err := s.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// converse runs the hub-and-spoke loop: start at the coordinator, follow
// transfers until an agent answers or the handoff budget runs out.
func (s *Service) converse(ctx context.Context, sess *sessionx.State, text string) (string, error) {
	current := contractx.AgentCoordinator
	handoff := ""

	for hop := 0; hop < maxHandoffs; hop++ {
		agent, found := s.registry.Specialist(current)
		if !found {
			return "", fmt.Errorf("%w: no agent registered as %s", contractx.ErrValidation, current)
		}

		resp, err := agent.Run(ctx, sess, contractx.SpecialistRequest{
			SessionID:   sess.SessionID,
			UserMessage: text,
			Handoff:     handoff,
		})
		if err != nil {
			return "", err
		}

		if resp.Transfer == "" {
			s.traceTurn(ctx, sess.SessionID, current, text, resp.Message)
			return resp.Message, nil
		}

		s.log.Debug().
			Str("session_id", sess.SessionID).
			Str("from", string(current)).
			Str("to", string(resp.Transfer)).
			Msg("conversation handed off")
		handoff = fmt.Sprintf("handed off from %s", current)
		current = resp.Transfer
	}

	return "", fmt.Errorf("%w: exceeded %d handoffs in one turn", contractx.ErrModelInvoke, maxHandoffs)
}

func (s *Service) traceTurn(ctx context.Context, sessionID string, agent contractx.AgentName, input, output string) {
	err := s.tracer.Trace(ctx, langfuse.Event{
		SessionID: sessionID,
		Name:      string(agent),
		Kind:      "model",
		Input:     input,
		Output:    output,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("trace export failed")
	}
}

func validateInput(in GraphInput) error {
	if strings.TrimSpace(in.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(in.Text) == "" {
		return ErrInvalidMessage
	}
	return nil
}
