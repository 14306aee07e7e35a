// Copyright 2025 AWS Expert Crew
// SPDX-License-Identifier: Apache-2.0

package crew

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAgentsYAML = `
aws_query_agent:
  role: Query Role
  goal: Answer about {topic}
  backstory: Backstory one
search_agent:
  role: Search Role
  goal: Research {topic}
  backstory: Backstory two
report_agent:
  role: Report Role
  goal: Write about {topic}
  backstory: Backstory three
`

const testTasksYAML = `
aws_query_task:
  description: Analyze {query}
  expected_output: A summary
  agent: aws_query_agent
search_task:
  description: Research {topic}
  expected_output: Findings
  agent: search_agent
report_task:
  description: Report on {query}
  expected_output: An answer
  agent: report_agent
`

func writeConfigDir(t *testing.T, agents, tasks string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents.yaml"), []byte(agents), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.yaml"), []byte(tasks), 0o644))
	return dir
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.validate())
	assert.Len(t, config.Agents, 3)
	assert.Len(t, config.Tasks, 3)
}

func TestLoadConfigEmptyDirUsesDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigFromDirectory(t *testing.T) {
	dir := writeConfigDir(t, testAgentsYAML, testTasksYAML)

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Query Role", config.Agents[QueryAgentName].Role)
	assert.Equal(t, "Analyze {query}", config.Tasks[QueryTaskName].Description)
	assert.Equal(t, SearchAgentName, config.Tasks[SearchTaskName].Agent)
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agents.yaml")
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("CREW_TEST_ROLE", "Injected Role")
	agents := testAgentsYAML + `
extra_agent:
  role: ${CREW_TEST_ROLE}
  goal: g
  backstory: b
`
	dir := writeConfigDir(t, agents, testTasksYAML)

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Injected Role", config.Agents["extra_agent"].Role)
}

func TestExpandEnvVarsLeavesUnknownReferences(t *testing.T) {
	assert.Equal(t, "x ${CREW_TEST_NO_SUCH_VAR} y", expandEnvVars("x ${CREW_TEST_NO_SUCH_VAR} y"))
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing agent",
			mutate:  func(c *Config) { delete(c.Agents, SearchAgentName) },
			wantErr: `agent "search_agent" is not defined`,
		},
		{
			name: "agent without role",
			mutate: func(c *Config) {
				a := c.Agents[ReportAgentName]
				a.Role = ""
				c.Agents[ReportAgentName] = a
			},
			wantErr: "has no role",
		},
		{
			name:    "missing task",
			mutate:  func(c *Config) { delete(c.Tasks, ReportTaskName) },
			wantErr: `task "report_task" is not defined`,
		},
		{
			name: "task without description",
			mutate: func(c *Config) {
				task := c.Tasks[QueryTaskName]
				task.Description = ""
				c.Tasks[QueryTaskName] = task
			},
			wantErr: "has no description",
		},
		{
			name: "task with unknown agent",
			mutate: func(c *Config) {
				task := c.Tasks[SearchTaskName]
				task.Agent = "nobody"
				c.Tasks[SearchTaskName] = task
			},
			wantErr: "references undefined agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuilderUsesConfiguredDefinitions(t *testing.T) {
	dir := writeConfigDir(t, testAgentsYAML, testTasksYAML)
	config, err := LoadConfig(dir)
	require.NoError(t, err)

	builder := NewBuilder(config, &echoLLM{}, &stubTool{name: "knowledge"}, nil)
	crew, err := builder.Crew()
	require.NoError(t, err)

	require.Len(t, crew.Tasks, 3)
	assert.Equal(t, QueryTaskName, crew.Tasks[0].Name)
	assert.Equal(t, SearchTaskName, crew.Tasks[1].Name)
	assert.Equal(t, ReportTaskName, crew.Tasks[2].Name)
	assert.Equal(t, "Query Role", crew.Tasks[0].Agent.Role)
	require.Len(t, crew.Tasks[0].Agent.Tools, 1)
	assert.Empty(t, crew.Tasks[2].Agent.Tools)
}
