// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import "fmt"

// Builder constructs the AWS expert crew's agents and tasks from config.
// Both the startup assembly and the adapter's fallback reconstruction go
// through the same factory methods, so the two dispatch branches can
// never drift apart.
type Builder struct {
	config    *Config
	llm       LLM
	knowledge Tool
	search    Tool
}

// NewBuilder creates a Builder. The search tool may be nil when web
// search is not configured; the search agent then works untooled.
func NewBuilder(config *Config, model LLM, knowledge, search Tool) *Builder {
	return &Builder{
		config:    config,
		llm:       model,
		knowledge: knowledge,
		search:    search,
	}
}

// QueryAgent handles AWS questions using the knowledge tool.
func (b *Builder) QueryAgent() *Agent {
	return b.agent(QueryAgentName, b.knowledge)
}

// SearchAgent gathers web results for the question.
func (b *Builder) SearchAgent() *Agent {
	return b.agent(SearchAgentName, b.search)
}

// ReportAgent synthesizes the final answer. It has no tools.
func (b *Builder) ReportAgent() *Agent {
	return b.agent(ReportAgentName, nil)
}

func (b *Builder) agent(name string, tool Tool) *Agent {
	cfg := b.config.Agents[name]
	agent := &Agent{
		Name:      name,
		Role:      cfg.Role,
		Goal:      cfg.Goal,
		Backstory: cfg.Backstory,
		LLM:       b.llm,
	}
	if tool != nil {
		agent.Tools = []Tool{tool}
	}
	return agent
}

// QueryTask analyzes the question and collects service knowledge.
func (b *Builder) QueryTask(agent *Agent) *Task {
	return b.task(QueryTaskName, agent)
}

// SearchTask researches current information about the topic.
func (b *Builder) SearchTask(agent *Agent) *Task {
	return b.task(SearchTaskName, agent)
}

// ReportTask produces the final answer.
func (b *Builder) ReportTask(agent *Agent) *Task {
	return b.task(ReportTaskName, agent)
}

func (b *Builder) task(name string, agent *Agent) *Task {
	cfg := b.config.Tasks[name]
	return &Task{
		Name:           name,
		Description:    cfg.Description,
		ExpectedOutput: cfg.ExpectedOutput,
		Agent:          agent,
	}
}

// Crew assembles the full pipeline: query, search, report, in that
// order, each stage's output available to the next.
func (b *Builder) Crew() (*Crew, error) {
	if b.config == nil {
		return nil, &ConfigError{Msg: "builder has no config"}
	}
	if err := b.config.validate(); err != nil {
		return nil, fmt.Errorf("cannot assemble crew: %w", err)
	}

	queryAgent := b.QueryAgent()
	searchAgent := b.SearchAgent()
	reportAgent := b.ReportAgent()

	return NewCrew(
		[]*Agent{queryAgent, searchAgent, reportAgent},
		[]*Task{
			b.QueryTask(queryAgent),
			b.SearchTask(searchAgent),
			b.ReportTask(reportAgent),
		},
	)
}
