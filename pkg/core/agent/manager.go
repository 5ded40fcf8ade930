// Package agent turns natural-language questions about the covered filings
// into grounded answers: classify the question, retrieve supporting chunks,
// and compose a cited response through an LLM provider.
package agent

import (
	"context"
	"fmt"

	"mag7intel/pkg/core/llm"
)

// Config selects LLM providers, globally and per agent role.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Model          string                 `yaml:"model"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig is a per-role override.
type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

// Manager resolves providers for agent roles from the config.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

// NewManager builds the provider map for every provider the config can name.
func NewManager(config Config) (*Manager, error) {
	providers := make(map[string]llm.Provider)
	for _, name := range []string{"gemini", "deepseek"} {
		p, err := llm.NewProvider(name, config.Model)
		if err != nil {
			return nil, err
		}
		providers[name] = p
	}
	if config.ActiveProvider == "" {
		config.ActiveProvider = "gemini"
	}
	if _, ok := providers[config.ActiveProvider]; !ok {
		return nil, fmt.Errorf("unknown active provider %q", config.ActiveProvider)
	}
	return &Manager{config: config, providers: providers}, nil
}

// GetProvider returns the provider for an agent role, honoring per-role
// overrides before the global active provider.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	return m.providers[m.config.ActiveProvider]
}

// ExecutePrompt routes a prompt to the role's provider.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return m.GetProvider(agentType).GenerateResponse(ctx, prompt, systemPrompt, options)
}

// ActiveProvider reports the configured global provider name.
func (m *Manager) ActiveProvider() string {
	return m.config.ActiveProvider
}
