package specialist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/alltimesound/customer-service-agent/agent/contract"
	llmx "github.com/alltimesound/customer-service-agent/agent/llm"
	promptx "github.com/alltimesound/customer-service-agent/agent/prompt"
)

type registryImpl struct {
	agents map[contractx.AgentName]contractx.Specialist
}

func (r *registryImpl) Specialist(name contractx.AgentName) (contractx.Specialist, bool) {
	agent, found := r.agents[name]
	return agent, found
}

func (r *registryImpl) Names() []contractx.AgentName {
	names := make([]contractx.AgentName, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}

// NewRegistry builds the coordinator and all six specialists. The
// coordinator is itself an agent in the registry, carrying only the
// transfer tool; its answers are greetings and routing questions.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	catalog contractx.Catalog,
	pipeline contractx.Pipeline,
	log zerolog.Logger,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadSet()
	names := append([]contractx.AgentName{contractx.AgentCoordinator}, contractx.SpecialistNames...)

	agents := make(map[contractx.AgentName]contractx.Specialist, len(names))
	for _, name := range names {
		systemPrompt := prompts.For(name)
		if systemPrompt == "" {
			return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, name)
		}
		modelCfg := cfg.OpenRouterFor(name)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, err
		}
		agent, err := newSpecialist(ctx, name, chatModel, systemPrompt, catalog, pipeline, log)
		if err != nil {
			return nil, err
		}
		agents[name] = agent
	}

	return &registryImpl{agents: agents}, nil
}
