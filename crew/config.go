// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Well-known agent and task names. The builder assembles the crew from
// these entries; configs must define all of them.
const (
	QueryAgentName  = "aws_query_agent"
	SearchAgentName = "search_agent"
	ReportAgentName = "report_agent"

	QueryTaskName  = "aws_query_task"
	SearchTaskName = "search_task"
	ReportTaskName = "report_task"
)

// AgentConfig defines one agent role.
type AgentConfig struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// TaskConfig defines one task and the agent that owns it.
type TaskConfig struct {
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	Agent          string `yaml:"agent"`
}

// Config holds the agent and task definitions the builder assembles from.
type Config struct {
	Agents map[string]AgentConfig
	Tasks  map[string]TaskConfig
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars substitutes ${VAR} references with environment values.
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

// LoadConfig reads agents.yaml and tasks.yaml from dir. An empty dir
// selects the built-in defaults.
func LoadConfig(dir string) (*Config, error) {
	if dir == "" {
		return DefaultConfig(), nil
	}

	agents := map[string]AgentConfig{}
	if err := loadYAMLFile(filepath.Join(dir, "agents.yaml"), &agents); err != nil {
		return nil, err
	}

	tasks := map[string]TaskConfig{}
	if err := loadYAMLFile(filepath.Join(dir, "tasks.yaml"), &tasks); err != nil {
		return nil, err
	}

	config := &Config{Agents: agents, Tasks: tasks}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadYAMLFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	for _, name := range []string{QueryAgentName, SearchAgentName, ReportAgentName} {
		agent, ok := c.Agents[name]
		if !ok {
			return &ConfigError{Msg: fmt.Sprintf("agent %q is not defined", name)}
		}
		if agent.Role == "" {
			return &ConfigError{Msg: fmt.Sprintf("agent %q has no role", name)}
		}
	}

	for _, name := range []string{QueryTaskName, SearchTaskName, ReportTaskName} {
		task, ok := c.Tasks[name]
		if !ok {
			return &ConfigError{Msg: fmt.Sprintf("task %q is not defined", name)}
		}
		if task.Description == "" {
			return &ConfigError{Msg: fmt.Sprintf("task %q has no description", name)}
		}
		if _, ok := c.Agents[task.Agent]; !ok {
			return &ConfigError{Msg: fmt.Sprintf("task %q references undefined agent %q", name, task.Agent)}
		}
	}

	return nil
}

// DefaultConfig returns the built-in agent and task definitions, used
// when no config directory is provided.
func DefaultConfig() *Config {
	return &Config{
		Agents: map[string]AgentConfig{
			QueryAgentName: {
				Role: "AWS Query Specialist",
				Goal: "Interpret the user's AWS question about {topic} and gather the relevant service knowledge",
				Backstory: "You are a senior AWS solutions architect. You know the AWS service catalog " +
					"inside out and can map vague questions to the concrete services and features involved.",
			},
			SearchAgentName: {
				Role: "AWS Research Specialist",
				Goal: "Find current, authoritative information about {topic} from AWS documentation and the web",
				Backstory: "You are a meticulous researcher. You verify claims against official AWS " +
					"documentation and recent announcements before passing them on.",
			},
			ReportAgentName: {
				Role: "AWS Report Writer",
				Goal: "Produce a clear, actionable answer about {topic} from the gathered material",
				Backstory: "You are a technical writer who turns raw findings into concise guidance " +
					"engineers can act on immediately.",
			},
		},
		Tasks: map[string]TaskConfig{
			QueryTaskName: {
				Description: "Analyze the question: {query}. Identify the AWS services involved and " +
					"collect the relevant service knowledge and configuration guidance.",
				ExpectedOutput: "A summary of the AWS services involved and the key facts needed to answer the question.",
				Agent:          QueryAgentName,
			},
			SearchTaskName: {
				Description: "Research current information about: {topic}. Prioritize official AWS " +
					"documentation, well-architected guidance, and recent announcements.",
				ExpectedOutput: "A list of findings with sources that complement the service knowledge.",
				Agent:          SearchAgentName,
			},
			ReportTaskName: {
				Description: "Write the final answer to: {query}. Combine the service knowledge and " +
					"research findings into practical, step-by-step guidance.",
				ExpectedOutput: "A complete answer with concrete recommendations and references.",
				Agent:          ReportAgentName,
			},
		},
	}
}
