// Package models maps the caller-facing modelId strings to a provider and the
// provider's own model name. The table is static at process start; an
// optional YAML file can override or extend it without a redeploy.
package models

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

type Config struct {
	Provider provider.Name `yaml:"provider" json:"provider"`
	Model    string        `yaml:"model" json:"model"`
}

// DefaultModelID backs LookupOrDefault for internal callers. The HTTP surface
// never reaches it: the dispatcher rejects unknown ids outright.
const DefaultModelID = "gpt35"

func builtinTable() map[string]Config {
	return map[string]Config{
		"gpt4o":         {Provider: provider.OpenAI, Model: "gpt-4o"},
		"gpt4o-mini":    {Provider: provider.OpenAI, Model: "gpt-4o-mini"},
		"gpt41":         {Provider: provider.OpenAI, Model: "gpt-4.1"},
		"o3-mini":       {Provider: provider.OpenAI, Model: "o3-mini"},
		"gpt35":         {Provider: provider.OpenAI, Model: "gpt-3.5-turbo"},
		"claude-sonnet": {Provider: provider.Anthropic, Model: "claude-3-5-sonnet-20241022"},
		"claude-haiku":  {Provider: provider.Anthropic, Model: "claude-3-5-haiku-20241022"},
		"mistral-large": {Provider: provider.Mistral, Model: "mistral-large-latest"},
		"mistral-small": {Provider: provider.Mistral, Model: "mistral-small-latest"},
		"gemini-pro":    {Provider: provider.Google, Model: "gemini-1.5-pro"},
		"gemini-flash":  {Provider: provider.Google, Model: "gemini-1.5-flash"},
		"deepseek-chat": {Provider: provider.DeepSeek, Model: "deepseek-chat"},
		"grok":          {Provider: provider.XAI, Model: "grok-2-latest"},
	}
}

type Registry struct {
	entries map[string]Config
}

func NewRegistry() *Registry {
	return &Registry{entries: builtinTable()}
}

// NewRegistryFromFile layers a YAML file over the built-in table. File shape:
//
//	models:
//	  gpt4o:
//	    provider: openai
//	    model: gpt-4o
func NewRegistryFromFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models config: %w", err)
	}
	var file struct {
		Models map[string]Config `yaml:"models"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse models config: %w", err)
	}

	r := NewRegistry()
	for id, cfg := range file.Models {
		if cfg.Provider == "" || cfg.Model == "" {
			return nil, fmt.Errorf("models config entry %q missing provider or model", id)
		}
		if cfg.Provider.EnvVar() == "" {
			return nil, fmt.Errorf("models config entry %q names unknown provider %q", id, cfg.Provider)
		}
		r.entries[id] = cfg
	}
	return r, nil
}

// Lookup is the strict form the dispatcher uses.
func (r *Registry) Lookup(modelID string) (Config, bool) {
	cfg, ok := r.entries[modelID]
	return cfg, ok
}

// LookupOrDefault is the lenient form for internal callers; unknown ids fall
// back to the default entry instead of erroring.
func (r *Registry) LookupOrDefault(modelID string) Config {
	if cfg, ok := r.entries[modelID]; ok {
		return cfg
	}
	return r.entries[DefaultModelID]
}

// SupportedIDs returns every known modelId, sorted, for error messages.
func (r *Registry) SupportedIDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
