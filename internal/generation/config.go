package generation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Task names known to the server.
const (
	TaskSuggestions  = "SUGGESTIONS"
	TaskSkills       = "SKILLS"
	TaskAlternatives = "ALTERNATIVES"
	TaskImprovement  = "IMPROVEMENT"
)

const defaultModel = "gemini-2.5-flash"

// TaskConfig is the set of generation parameters used for one kind of task.
type TaskConfig struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int32   `yaml:"max_tokens"`
}

func (c TaskConfig) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature %v outside [0, 1]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	return nil
}

// Registry is a read-only table of task configurations. The zero value has
// no tasks.
type Registry struct {
	tasks map[string]TaskConfig
}

// NewRegistry copies tasks into a new registry after validating each entry.
func NewRegistry(tasks map[string]TaskConfig) (Registry, error) {
	m := make(map[string]TaskConfig, len(tasks))
	for name, cfg := range tasks {
		if err := cfg.validate(); err != nil {
			return Registry{}, fmt.Errorf("task %s: %w", name, err)
		}
		m[name] = cfg
	}
	return Registry{tasks: m}, nil
}

// DefaultTasks returns the built-in task table.
func DefaultTasks() map[string]TaskConfig {
	return map[string]TaskConfig{
		TaskSuggestions:  {Model: defaultModel, Temperature: 0.7, MaxTokens: 500},
		TaskSkills:       {Model: defaultModel, Temperature: 0.5, MaxTokens: 600},
		TaskAlternatives: {Model: defaultModel, Temperature: 0.8, MaxTokens: 800},
		TaskImprovement:  {Model: defaultModel, Temperature: 0.6, MaxTokens: 1000},
	}
}

// DefaultRegistry builds a registry from DefaultTasks.
func DefaultRegistry() Registry {
	r, err := NewRegistry(DefaultTasks())
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry reads a YAML task table from path and layers it over the
// defaults. An empty path returns the defaults.
//
//	SUGGESTIONS:
//	  model: gemini-2.5-pro
//	  temperature: 0.4
//	  max_tokens: 400
func LoadRegistry(path string) (Registry, error) {
	tasks := DefaultTasks()
	if path == "" {
		return NewRegistry(tasks)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("read task config: %w", err)
	}
	var overlay map[string]TaskConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Registry{}, fmt.Errorf("parse task config: %w", err)
	}
	for name, cfg := range overlay {
		tasks[name] = cfg
	}
	return NewRegistry(tasks)
}

// Lookup returns the configuration registered under name.
func (r Registry) Lookup(name string) (TaskConfig, error) {
	cfg, ok := r.tasks[name]
	if !ok {
		return TaskConfig{}, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	return cfg, nil
}

// Len reports the number of registered tasks.
func (r Registry) Len() int { return len(r.tasks) }
