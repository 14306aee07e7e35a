// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import (
	"context"
	"fmt"
	"strings"

	"awsexpert/platform/crew/llm"
	"awsexpert/platform/shared/logger"
)

// PipelineInput is the normalized input record handed to the crew.
type PipelineInput struct {
	Topic string `json:"topic"`
	Query string `json:"query"`
}

// NewPipelineInput builds a PipelineInput, defaulting topic to the query
// when absent.
func NewPipelineInput(query, topic string) PipelineInput {
	if topic == "" {
		topic = query
	}
	return PipelineInput{Topic: topic, Query: query}
}

// Tool is a capability an agent can invoke while working a task.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// LLM is the completion interface agents use. *llm.Router satisfies it.
type LLM interface {
	Query(ctx context.Context, prompt string, options llm.QueryOptions) (*llm.Response, error)
}

// Agent is one named role in the crew.
type Agent struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
	Tools     []Tool
	LLM       LLM
}

func (a *Agent) systemPrompt() string {
	return fmt.Sprintf("You are %s. %s\n\n%s", a.Role, a.Goal, a.Backstory)
}

// execute runs the agent against a task prompt. Tools are invoked first
// with the tool input; their output (or unavailability) is appended to
// the prompt before the LLM call.
func (a *Agent) execute(ctx context.Context, log *logger.Logger, taskPrompt, toolInput string) (string, error) {
	prompt := taskPrompt

	for _, tool := range a.Tools {
		output, err := tool.Run(ctx, toolInput)
		if err != nil {
			// A failed tool degrades the run, it does not abort it. The
			// agent is told so it can qualify its answer.
			log.Warn("", fmt.Sprintf("tool %q failed", tool.Name()), map[string]interface{}{
				"agent": a.Name,
				"error": err.Error(),
			})
			prompt += fmt.Sprintf("\n\n[%s] unavailable: %v", tool.Name(), err)
			continue
		}
		prompt += fmt.Sprintf("\n\n[%s results]\n%s", tool.Name(), output)
	}

	response, err := a.LLM.Query(ctx, prompt, llm.QueryOptions{
		SystemPrompt: a.systemPrompt(),
		MaxTokens:    4096,
		Temperature:  0.7,
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.Name, err)
	}
	if response.Content == "" {
		return "", fmt.Errorf("agent %s: LLM returned empty response", a.Name)
	}

	return response.Content, nil
}

// Task is one unit of work assigned to an agent.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
}

// Crew runs tasks strictly sequentially, threading each stage's output
// into the next stage's prompt.
type Crew struct {
	Agents []*Agent
	Tasks  []*Task

	log *logger.Logger
}

// NewCrew assembles a crew from agents and ordered tasks.
func NewCrew(agents []*Agent, tasks []*Task) (*Crew, error) {
	if len(tasks) == 0 {
		return nil, &ConfigError{Msg: "crew has no tasks"}
	}
	for _, task := range tasks {
		if task.Agent == nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("task %q has no agent", task.Name)}
		}
		if task.Agent.LLM == nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("agent %q has no LLM", task.Agent.Name)}
		}
	}

	return &Crew{
		Agents: agents,
		Tasks:  tasks,
		log:    logger.New("crew"),
	}, nil
}

// Kickoff runs the full pipeline and returns the final task's output.
func (c *Crew) Kickoff(ctx context.Context, inputs PipelineInput) (string, error) {
	var previousOutputs []string

	for i, task := range c.Tasks {
		prompt := c.buildTaskPrompt(task, inputs, previousOutputs)

		c.log.Info("", fmt.Sprintf("running task %s (%d/%d)", task.Name, i+1, len(c.Tasks)), map[string]interface{}{
			"agent": task.Agent.Name,
		})

		output, err := task.Agent.execute(ctx, c.log, prompt, inputs.Query)
		if err != nil {
			return "", fmt.Errorf("task %s failed: %w", task.Name, err)
		}

		previousOutputs = append(previousOutputs, fmt.Sprintf("[%s output]\n%s", task.Name, output))
	}

	// The last stage's output is the crew's answer.
	last := previousOutputs[len(previousOutputs)-1]
	return strings.TrimPrefix(last, fmt.Sprintf("[%s output]\n", c.Tasks[len(c.Tasks)-1].Name)), nil
}

// buildTaskPrompt interpolates {topic} and {query} and appends prior
// stage outputs so each task sees what came before it.
func (c *Crew) buildTaskPrompt(task *Task, inputs PipelineInput, previousOutputs []string) string {
	prompt := interpolate(task.Description, inputs)
	if task.ExpectedOutput != "" {
		prompt += "\n\nExpected output: " + interpolate(task.ExpectedOutput, inputs)
	}
	if len(previousOutputs) > 0 {
		prompt += "\n\nContext from previous stages:\n" + strings.Join(previousOutputs, "\n\n")
	}
	return prompt
}

func interpolate(template string, inputs PipelineInput) string {
	out := strings.ReplaceAll(template, "{topic}", inputs.Topic)
	return strings.ReplaceAll(out, "{query}", inputs.Query)
}
