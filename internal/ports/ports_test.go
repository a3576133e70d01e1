package ports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squadron/internal/instance"
)

func makeInstance(t *testing.T, name string, game, query, rcon, beacon int) *instance.ServerInstance {
	t.Helper()
	inst, err := instance.NewInstance(name, true, game, query, rcon, beacon,
		"/tmp/"+name, "/tmp/cache/"+name, nil,
		instance.ServerConfig{Rcon: instance.RconSettings{QueueLimit: -1}})
	require.NoError(t, err)
	return inst
}

func registryOf(t *testing.T, insts ...*instance.ServerInstance) *instance.Registry {
	t.Helper()
	reg := instance.NewRegistry()
	for _, inst := range insts {
		require.NoError(t, reg.Add(inst))
	}
	return reg
}

func TestExpandReservesAdjacentPorts(t *testing.T) {
	inst := makeInstance(t, "alpha", 7787, 27165, 21114, 15000)
	set := Expand(inst)

	assert.Equal(t, []int{7787, 7788}, set.Game)
	assert.Equal(t, []int{27165, 27166}, set.Query)
	assert.Equal(t, []int{21114}, set.Rcon)
	assert.Equal(t, []int{15000}, set.Beacon)
	assert.Equal(t, []int{7787, 7788, 27165, 27166, 21114, 15000}, set.All())
}

func TestValidateAcceptsDisjointInstances(t *testing.T) {
	reg := registryOf(t,
		makeInstance(t, "alpha", 7787, 27165, 21114, 15000),
		makeInstance(t, "bravo", 7789, 27167, 21115, 15001),
	)
	assert.NoError(t, Validate(reg))
}

func TestValidateReportsFamilyConflict(t *testing.T) {
	reg := registryOf(t,
		makeInstance(t, "alpha", 7787, 27165, 21114, 15000),
		makeInstance(t, "bravo", 7787, 27167, 21115, 15001),
	)

	err := Validate(reg)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))

	families := map[Family][]int{}
	for _, c := range conflict.Conflicts {
		families[c.Family] = c.Ports
	}
	assert.Equal(t, []int{7787, 7788}, families[FamilyGame])
	assert.Equal(t, []int{7787, 7788}, families[combined])
	assert.NotContains(t, families, FamilyQuery)
}

func TestValidateReportsCrossFamilyConflict(t *testing.T) {
	// bravo's beacon lands on alpha's rcon port: no family collides with
	// itself, but the combined check must still fail.
	reg := registryOf(t,
		makeInstance(t, "alpha", 7787, 27165, 21114, 15000),
		makeInstance(t, "bravo", 7789, 27167, 21115, 21114),
	)

	err := Validate(reg)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, combined, conflict.Conflicts[0].Family)
	assert.Equal(t, []int{21114}, conflict.Conflicts[0].Ports)
}

func TestValidateReportsAllConflictsAtOnce(t *testing.T) {
	reg := registryOf(t,
		makeInstance(t, "alpha", 7787, 27165, 21114, 15000),
		makeInstance(t, "bravo", 7787, 27165, 21114, 15000),
	)

	err := Validate(reg)
	require.Error(t, err)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	// Four family checks plus the combined check all fail.
	assert.Len(t, conflict.Conflicts, 5)
	assert.Contains(t, err.Error(), "7787")
	assert.Contains(t, err.Error(), "21114")
}

func TestValidateIgnoresDisabledInstances(t *testing.T) {
	disabled, err := instance.NewInstance("bravo", false, 7787, 27165, 21114, 15000,
		"/tmp/bravo", "/tmp/cache/bravo", nil,
		instance.ServerConfig{Rcon: instance.RconSettings{QueueLimit: -1}})
	require.NoError(t, err)

	reg := registryOf(t, makeInstance(t, "alpha", 7787, 27165, 21114, 15000), disabled)
	assert.NoError(t, Validate(reg))
}

func TestFirewallRulesPartitionTransport(t *testing.T) {
	reg := registryOf(t, makeInstance(t, "alpha", 7787, 27165, 21114, 15000))
	rules := FirewallRules(reg)
	require.Len(t, rules, 6)

	byPort := map[int]Rule{}
	for _, r := range rules {
		byPort[r.Port] = r
	}

	// Game and beacon are datagram-only.
	assert.Equal(t, Rule{Port: 7787, UDP: true}, byPort[7787])
	assert.Equal(t, Rule{Port: 7788, UDP: true}, byPort[7788])
	assert.Equal(t, Rule{Port: 15000, UDP: true}, byPort[15000])
	// Query and rcon accept both transports.
	assert.Equal(t, Rule{Port: 27165, TCP: true, UDP: true}, byPort[27165])
	assert.Equal(t, Rule{Port: 27166, TCP: true, UDP: true}, byPort[27166])
	assert.Equal(t, Rule{Port: 21114, TCP: true, UDP: true}, byPort[21114])
}
