package main

import (
	"context"
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const defaultMatchModel = "gemini-2.5-pro"

func GetAgent(ctx context.Context, apiKey, agentName, modelName string) (agent.Agent, error) {
	if modelName == "" {
		modelName = defaultMatchModel
	}
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	matcher, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Match a CV against a job posting",
		Instruction: matcherInstruction(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return matcher, nil
}
