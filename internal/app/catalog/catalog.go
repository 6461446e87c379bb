// Package catalog holds the per-role content of the assistant: greetings,
// capabilities, quick actions, FAQ answers and quick-action replies.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

//go:embed roles.yaml
var defaultRoles []byte

// FAQ is one canned answer, selected when any keyword occurs in the message.
type FAQ struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

// ActionReply is the reply to a quick action. Content may contain {name}.
type ActionReply struct {
	Content  string          `yaml:"content"`
	Metadata domain.Metadata `yaml:"metadata"`
}

// Role is the catalog entry of one portal role.
type Role struct {
	Name           string                 `yaml:"name"`
	Greeting       string                 `yaml:"greeting"`
	ContextualHelp string                 `yaml:"contextual_help"`
	Capabilities   []string               `yaml:"capabilities"`
	QuickActions   []domain.QuickAction   `yaml:"quick_actions"`
	FAQ            []FAQ                  `yaml:"faq"`
	Actions        map[string]ActionReply `yaml:"actions"`
}

type file struct {
	FallbackAction ActionReply      `yaml:"fallback_action"`
	Roles          map[string]*Role `yaml:"roles"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	roles    map[domain.Role]*Role
	actions  map[string]ActionReply // every role's actions, first role by name wins
	fallback ActionReply
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultRoles)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded roles.yaml: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a catalog. The visitor role is mandatory since every
// unknown role falls back to it.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		roles:    make(map[domain.Role]*Role, len(f.Roles)),
		actions:  make(map[string]ActionReply),
		fallback: f.FallbackAction,
	}
	names := lo.Keys(f.Roles)
	slices.Sort(names)
	for _, name := range names {
		r := f.Roles[name]
		if r == nil {
			continue
		}
		c.roles[domain.Role(strings.ToLower(name))] = r
		for id, reply := range r.Actions {
			if _, seen := c.actions[id]; !seen {
				c.actions[id] = reply
			}
		}
	}

	if _, ok := c.roles[domain.RoleVisitor]; !ok {
		return nil, errors.New("catalog: visitor role is required")
	}
	if c.fallback.Content == "" {
		c.fallback = ActionReply{
			Content:  "I'm not sure how to handle that action yet. Let me know what you'd like to do and I'll help you!",
			Metadata: domain.Metadata{ActionType: "unknown"},
		}
	}
	return c, nil
}

// Role returns the entry for role, or the visitor entry.
func (c *Catalog) Role(role domain.Role) *Role {
	if r, ok := c.roles[role]; ok {
		return r
	}
	return c.roles[domain.RoleVisitor]
}

// Welcome formats the greeting shown when a session starts.
func (c *Catalog) Welcome(role domain.Role, userName string) string {
	r := c.Role(role)
	if name := strings.TrimSpace(userName); name != "" {
		return fmt.Sprintf("Hi %s! 👋 %s", name, r.Greeting)
	}
	return r.Greeting
}

// QuickActions returns a copy of the role's quick-action set.
func (c *Catalog) QuickActions(role domain.Role) []domain.QuickAction {
	qa := c.Role(role).QuickActions
	out := make([]domain.QuickAction, len(qa))
	copy(out, qa)
	return out
}

// CapabilityTitles returns up to max capabilities as display titles,
// e.g. "user_management" becomes "User Management".
func (c *Catalog) CapabilityTitles(role domain.Role, max int) []string {
	caps := c.Role(role).Capabilities
	if max > 0 && len(caps) > max {
		caps = caps[:max]
	}
	// Casers are stateful, so one per call.
	title := cases.Title(language.English)
	return lo.Map(caps, func(capability string, _ int) string {
		return title.String(strings.ReplaceAll(capability, "_", " "))
	})
}

// MatchFAQ returns the first FAQ answer with a keyword contained in text.
func (c *Catalog) MatchFAQ(role domain.Role, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, f := range c.Role(role).FAQ {
		for _, kw := range f.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return f.Answer, true
			}
		}
	}
	return "", false
}

// MatchCapability returns the first capability whose spaced form occurs in text.
func (c *Catalog) MatchCapability(role domain.Role, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, capability := range c.Role(role).Capabilities {
		spaced := strings.ReplaceAll(capability, "_", " ")
		if strings.Contains(lower, spaced) {
			return spaced, true
		}
	}
	return "", false
}

// ActionReply resolves a quick-action id. The role's own actions win, then
// any role's action with that id, then the fallback. ok is false for the
// fallback.
func (c *Catalog) ActionReply(role domain.Role, action, userName string) (ActionReply, bool) {
	reply, ok := c.Role(role).Actions[action]
	if !ok {
		reply, ok = c.actions[action]
	}
	if !ok {
		return c.fallback, false
	}

	name := strings.TrimSpace(userName)
	if name == "" {
		name = "there"
	}
	reply.Content = strings.ReplaceAll(reply.Content, "{name}", name)
	return reply, true
}
