// Package specialist implements the domain agents as bounded tool-calling
// loops: each round asks the model for tool calls or a final answer, runs
// the requested tools through the mediation pipeline, and feeds the results
// back until the model answers or hands off.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/alltimesound/customer-service-agent/agent/contract"
	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
)

// maxToolRounds bounds the loop; a model that keeps requesting tools past
// this is cut off with whatever results exist.
const maxToolRounds = 6

type specialistImpl struct {
	name       contractx.AgentName
	toolRunner compose.Runnable[map[string]any, *schema.Message]
	catalog    contractx.Catalog
	pipeline   contractx.Pipeline
	log        zerolog.Logger
}

func newSpecialist(
	ctx context.Context,
	name contractx.AgentName,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	catalog contractx.Catalog,
	pipeline contractx.Pipeline,
	log zerolog.Logger,
) (*specialistImpl, error) {
	tools := catalog.ToolsFor(name)
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, t.Info())
	}

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, name, err)
	}
	toolRunner, err := compileToolLoopGraph(ctx, toolModel, systemPrompt, fmt.Sprintf("%s.tool_loop", name))
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool loop for agent=%s: %v", contractx.ErrModelInvoke, name, err)
	}

	return &specialistImpl{
		name:       name,
		toolRunner: toolRunner,
		catalog:    catalog,
		pipeline:   pipeline,
		log:        log.With().Str("agent", string(name)).Logger(),
	}, nil
}

func (s *specialistImpl) Run(ctx context.Context, sess *sessionx.State, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	var results []contractx.ToolResult

	for round := 0; round < maxToolRounds; round++ {
		if err := s.pipeline.BeforeModel(ctx, sess); err != nil {
			return contractx.SpecialistResponse{}, err
		}

		msg, err := s.invokeModel(ctx, req, results)
		if err != nil {
			return contractx.SpecialistResponse{}, err
		}

		requests, err := toToolRequests(msg.ToolCalls)
		if err != nil {
			return contractx.SpecialistResponse{}, err
		}
		if len(requests) == 0 {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				return contractx.SpecialistResponse{}, fmt.Errorf("%w: agent=%s produced neither message nor tool calls", contractx.ErrSchemaViolation, s.name)
			}
			return contractx.SpecialistResponse{Message: content}, nil
		}

		roundResults, transfer, err := s.runTools(ctx, sess, requests)
		if err != nil {
			return contractx.SpecialistResponse{}, err
		}
		if transfer != "" {
			return contractx.SpecialistResponse{Transfer: transfer}, nil
		}
		results = append(results, roundResults...)
	}

	return contractx.SpecialistResponse{}, fmt.Errorf("%w: agent=%s exceeded %d tool rounds", contractx.ErrModelInvoke, s.name, maxToolRounds)
}

func (s *specialistImpl) invokeModel(ctx context.Context, req contractx.SpecialistRequest, results []contractx.ToolResult) (*schema.Message, error) {
	payload := map[string]any{
		"user_message": req.UserMessage,
	}
	if req.Handoff != "" {
		payload["handoff_note"] = req.Handoff
	}
	if len(results) > 0 {
		payload["tool_results"] = results
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal agent payload: %v", contractx.ErrValidation, err)
	}

	msg, err := s.toolRunner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return nil, fmt.Errorf("%w: agent=%s invoke: %v", contractx.ErrModelInvoke, s.name, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: agent=%s returned empty response", contractx.ErrSchemaViolation, s.name)
	}
	return msg, nil
}

// runTools executes one round of requested tools through the mediation
// pipeline. A transfer short-circuits the round; denials become error
// results the model sees next round instead of failing the turn.
func (s *specialistImpl) runTools(
	ctx context.Context,
	sess *sessionx.State,
	requests []contractx.ToolRequest,
) ([]contractx.ToolResult, contractx.AgentName, error) {
	results := make([]contractx.ToolResult, 0, len(requests))

	for _, request := range requests {
		tool, allowed := s.catalog.Lookup(s.name, request.Tool)
		if !allowed {
			return nil, "", fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, request.Tool, s.name)
		}

		call := &contractx.ToolCall{Agent: s.name, Tool: tool, Args: request.Args}
		if denial := s.pipeline.BeforeTool(ctx, call, sess); denial != "" {
			results = append(results, contractx.ToolResult{Tool: request.Tool, Error: denial})
			continue
		}

		raw, err := tool.Execute(ctx, call.Args)
		if err != nil {
			s.log.Error().Err(err).Str("tool", request.Tool).Msg("tool execution failed")
			results = append(results, contractx.ToolResult{Tool: request.Tool, Error: err.Error()})
			continue
		}
		if handoff, isTransfer := raw.(contractx.TransferResult); isTransfer {
			return nil, handoff.Agent, nil
		}

		raw = s.pipeline.AfterTool(ctx, call, sess, raw)
		results = append(results, contractx.ToolResult{Tool: request.Tool, Result: raw})
	}
	return results, "", nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	requests := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		requests = append(requests, contractx.ToolRequest{Tool: tool, Args: args})
	}
	return requests, nil
}
