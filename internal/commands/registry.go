package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Group is the help section a command is listed under.
type Group int

const (
	// GroupList holds commands that read or change the stored list.
	GroupList Group = iota

	// GroupRemote holds the Google Tasks mirror and its credentials.
	GroupRemote

	// GroupOther holds everything else.
	GroupOther
)

// Title returns the help section heading.
func (g Group) Title() string {
	switch g {
	case GroupList:
		return "List commands"
	case GroupRemote:
		return "Google Tasks commands"
	default:
		return "Other commands"
	}
}

// remoteCommand is implemented by commands that talk to Google Tasks or
// manage its credentials.
type remoteCommand interface {
	UsesRemote() bool
}

// GroupOf classifies c for help output.
func GroupOf(c Command) Group {
	if r, ok := c.(remoteCommand); ok && r.UsesRemote() {
		return GroupRemote
	}
	if c.NeedsService() {
		return GroupList
	}
	return GroupOther
}

// Section is one group of commands, sorted by name.
type Section struct {
	Group    Group
	Commands []Command
}

// Registry holds registered commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command // name and aliases map to command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds a command. Names and aliases share one namespace.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for i, name := range names {
		if _, exists := r.cmds[name]; exists {
			if i == 0 {
				return fmt.Errorf("command already registered: %s", name)
			}
			return fmt.Errorf("command alias already registered: %s", name)
		}
	}
	for _, name := range names {
		r.cmds[name] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]Command)
	for _, cmd := range r.cmds {
		seen[cmd.Name()] = cmd
	}
	result := make([]Command, 0, len(seen))
	for _, cmd := range seen {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Sections returns the non-empty groups in GroupList, GroupRemote,
// GroupOther order.
func (r *Registry) Sections() []Section {
	byGroup := make(map[Group][]Command)
	for _, cmd := range r.All() {
		g := GroupOf(cmd)
		byGroup[g] = append(byGroup[g], cmd)
	}

	var out []Section
	for _, g := range []Group{GroupList, GroupRemote, GroupOther} {
		if cmds := byGroup[g]; len(cmds) > 0 {
			out = append(out, Section{Group: g, Commands: cmds})
		}
	}
	return out
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
