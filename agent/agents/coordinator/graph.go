package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"

	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
)

func (s *Service) compileTurnGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			if err := validateInput(in); err != nil {
				return nil, err
			}
			return &graphState{Input: in}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			sess, err := s.sessions.Load(ctx, in.Input.SessionID)
			if err != nil {
				if !errors.Is(err, sessionx.ErrStateNotFound) {
					return nil, fmt.Errorf("load session: %w", err)
				}
				sess = sessionx.NewState(in.Input.SessionID, s.now())
			}
			in.Sess = sess
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("bind_profile",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			if err := s.pipeline.BeforeTurn(ctx, in.Sess); err != nil {
				return nil, err
			}
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node bind_profile: %w", err)
	}

	if err := graph.AddLambdaNode("converse",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			reply, err := s.converse(ctx, in.Sess, in.Input.Text)
			if err != nil {
				return nil, err
			}
			in.Reply = reply
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node converse: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			in.Sess.Touch(s.now())
			if err := s.sessions.Save(ctx, in.Sess); err != nil {
				return nil, fmt.Errorf("save session: %w", err)
			}
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (GraphOutput, error) {
			return GraphOutput{Reply: in.Reply}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "bind_profile"},
		{"bind_profile", "converse"},
		{"converse", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("coordinator.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile coordinator graph: %w", err)
	}
	return runner, nil
}
