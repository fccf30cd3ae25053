package command

import (
	"fmt"
	"sort"

	"github.com/joeycumines/task-then-motion-planning/internal/config"
)

// Registry manages the collection of available commands.
type Registry struct {
	commands map[string]Command
	config   *config.Config
}

// NewRegistryWithConfig creates a new command registry. A nil cfg is
// replaced with an empty configuration.
func NewRegistryWithConfig(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Registry{
		commands: make(map[string]Command),
		config:   cfg,
	}
}

// Config returns the configuration commands were registered with.
func (r *Registry) Config() *config.Config { return r.config }

// Register adds a command to the registry, replacing any with the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, error) {
	if cmd, exists := r.commands[name]; exists {
		return cmd, nil
	}
	return nil, fmt.Errorf("command not found: %s", name)
}

// List returns the sorted names of all registered commands.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry registers every built-in command.
func NewDefaultRegistry(cfg *config.Config, configPath, version string) *Registry {
	r := NewRegistryWithConfig(cfg)
	r.Register(NewHelpCommand(r))
	r.Register(NewVersionCommand(version))
	r.Register(NewConfigCommand(r.config, configPath))
	r.Register(NewInitCommand())
	r.Register(NewRunCommand(r.config))
	r.Register(NewPlanCommand(r.config))
	r.Register(NewPDDLCommand(r.config))
	return r
}
