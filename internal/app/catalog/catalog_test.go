package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-nish/Invensis-Requiter/internal/app/catalog"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

func TestDefaultHasEveryRole(t *testing.T) {
	c := catalog.Default()

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleHR, domain.RoleManager, domain.RoleCluster, domain.RoleVisitor} {
		r := c.Role(role)
		require.NotNil(t, r, role)
		assert.NotEmpty(t, r.Greeting, role)
		assert.Len(t, c.QuickActions(role), 4, role)
		assert.NotEmpty(t, r.FAQ, role)
	}
}

func TestUnknownRoleFallsBackToVisitor(t *testing.T) {
	c := catalog.Default()

	assert.Equal(t, c.Role(domain.RoleVisitor), c.Role("recruiter"))
}

func TestWelcome(t *testing.T) {
	c := catalog.Default()
	greeting := c.Role(domain.RoleHR).Greeting

	assert.Equal(t, "Hi Sarah! 👋 "+greeting, c.Welcome(domain.RoleHR, "Sarah"))
	assert.Equal(t, greeting, c.Welcome(domain.RoleHR, "  "))
}

func TestQuickActionsReturnsCopy(t *testing.T) {
	c := catalog.Default()

	qa := c.QuickActions(domain.RoleAdmin)
	qa[0].Label = "changed"

	assert.Equal(t, "View Analytics", c.QuickActions(domain.RoleAdmin)[0].Label)
}

func TestCapabilityTitles(t *testing.T) {
	c := catalog.Default()

	titles := c.CapabilityTitles(domain.RoleAdmin, 5)
	require.Len(t, titles, 5)
	assert.Equal(t, "Dashboard Analytics", titles[0])
	assert.Equal(t, "User Management", titles[1])
}

func TestMatchFAQ(t *testing.T) {
	c := catalog.Default()

	answer, ok := c.MatchFAQ(domain.RoleHR, "How do I schedule an interview?")
	require.True(t, ok)
	assert.Contains(t, answer, "Schedule interviews")

	_, ok = c.MatchFAQ(domain.RoleHR, "zzz")
	assert.False(t, ok)
}

func TestActionReply(t *testing.T) {
	c := catalog.Default()

	reply, ok := c.ActionReply(domain.RoleAdmin, "show_analytics", "Ana")
	require.True(t, ok)
	assert.Contains(t, reply.Content, "Hi Ana!")
	assert.Equal(t, "analytics", reply.Metadata.ActionType)
	assert.Equal(t, 45, reply.Metadata.Data["users"])

	reply, ok = c.ActionReply(domain.RoleAdmin, "show_analytics", "")
	require.True(t, ok)
	assert.Contains(t, reply.Content, "Hi there!")

	// actions of another role still resolve
	reply, ok = c.ActionReply(domain.RoleVisitor, "team_status", "Bo")
	require.True(t, ok)
	assert.Equal(t, "team_status", reply.Metadata.ActionType)

	reply, ok = c.ActionReply(domain.RoleAdmin, "launch_rocket", "Ana")
	assert.False(t, ok)
	assert.Equal(t, "unknown", reply.Metadata.ActionType)
	assert.NotEmpty(t, reply.Content)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	yml := `
roles:
  visitor:
    name: Guest
    greeting: Hello guest
    quick_actions:
      - {icon: "?", label: Help, action: help}
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	c, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello guest", c.Welcome(domain.RoleAdmin, ""))

	reply, ok := c.ActionReply(domain.RoleVisitor, "help", "")
	assert.False(t, ok)
	assert.Equal(t, "unknown", reply.Metadata.ActionType)
}

func TestParseRequiresVisitor(t *testing.T) {
	_, err := catalog.Parse([]byte("roles:\n  admin:\n    name: Admin\n"))
	require.Error(t, err)
}
