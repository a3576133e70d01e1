package ports

import (
	"fmt"
	"sort"
	"strings"

	"squadron/internal/instance"
)

// Family is one of the four independent port families an instance reserves.
type Family string

const (
	FamilyGame   Family = "game"
	FamilyQuery  Family = "query"
	FamilyRcon   Family = "rcon"
	FamilyBeacon Family = "beacon"
)

// PortSet holds the concrete ports one instance occupies, expanded from its
// declared base ports. Game and query each reserve base and base+1.
type PortSet struct {
	Game   []int
	Query  []int
	Rcon   []int
	Beacon []int
}

// Expand derives the concrete port set from an instance's base ports.
func Expand(inst *instance.ServerInstance) PortSet {
	return PortSet{
		Game:   []int{inst.GamePort, inst.GamePort + 1},
		Query:  []int{inst.QueryPort, inst.QueryPort + 1},
		Rcon:   []int{inst.RconPort},
		Beacon: []int{inst.BeaconPort},
	}
}

// All returns every port in the set, family order preserved.
func (p PortSet) All() []int {
	out := make([]int, 0, 6)
	out = append(out, p.Game...)
	out = append(out, p.Query...)
	out = append(out, p.Rcon...)
	out = append(out, p.Beacon...)
	return out
}

// Conflict names one failed uniqueness check and the ports that collided.
type Conflict struct {
	Family Family
	Ports  []int
}

// ConflictError reports every colliding port across all enabled instances.
// Validation runs to completion so all conflicts surface together.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		strs := make([]string, len(c.Ports))
		for i, p := range c.Ports {
			strs[i] = fmt.Sprint(p)
		}
		parts = append(parts, fmt.Sprintf("%s ports [%s]", c.Family, strings.Join(strs, " ")))
	}
	return "port conflict: duplicate " + strings.Join(parts, "; ")
}

// combined marks the check over the concatenation of all four families.
const combined Family = "all"

// Validate checks global port uniqueness across every enabled instance:
// each family independently, then the concatenation of all families. It
// inspects the full registry before reporting so operators see every
// collision at once.
func Validate(reg *instance.Registry) error {
	families := []Family{FamilyGame, FamilyQuery, FamilyRcon, FamilyBeacon}
	perFamily := map[Family][]int{}
	var all []int

	for _, inst := range reg.Enabled() {
		set := Expand(inst)
		perFamily[FamilyGame] = append(perFamily[FamilyGame], set.Game...)
		perFamily[FamilyQuery] = append(perFamily[FamilyQuery], set.Query...)
		perFamily[FamilyRcon] = append(perFamily[FamilyRcon], set.Rcon...)
		perFamily[FamilyBeacon] = append(perFamily[FamilyBeacon], set.Beacon...)
		all = append(all, set.All()...)
	}

	var conflicts []Conflict
	for _, f := range families {
		if dups := duplicates(perFamily[f]); len(dups) > 0 {
			conflicts = append(conflicts, Conflict{Family: f, Ports: dups})
		}
	}
	if dups := duplicates(all); len(dups) > 0 {
		conflicts = append(conflicts, Conflict{Family: combined, Ports: dups})
	}

	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func duplicates(ports []int) []int {
	seen := make(map[int]int, len(ports))
	for _, p := range ports {
		seen[p]++
	}
	var dups []int
	for p, n := range seen {
		if n > 1 {
			dups = append(dups, p)
		}
	}
	sort.Ints(dups)
	return dups
}
