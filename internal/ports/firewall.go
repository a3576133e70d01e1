package ports

import "squadron/internal/instance"

// Rule is one inbound port that must be opened on the host firewall.
// Query and rcon accept both stream and datagram clients; game and beacon
// traffic is datagram only.
type Rule struct {
	Port int
	TCP  bool
	UDP  bool
}

// FirewallRules returns the inbound rules for every enabled instance, in
// registry order, partitioned by transport. The rules are emitted for
// external tooling; this system does not apply them.
func FirewallRules(reg *instance.Registry) []Rule {
	var rules []Rule
	for _, inst := range reg.Enabled() {
		set := Expand(inst)
		for _, p := range set.Game {
			rules = append(rules, Rule{Port: p, UDP: true})
		}
		for _, p := range set.Query {
			rules = append(rules, Rule{Port: p, TCP: true, UDP: true})
		}
		for _, p := range set.Rcon {
			rules = append(rules, Rule{Port: p, TCP: true, UDP: true})
		}
		for _, p := range set.Beacon {
			rules = append(rules, Rule{Port: p, UDP: true})
		}
	}
	return rules
}
