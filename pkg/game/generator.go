package game

import (
	"fmt"
	"strings"

	"netrunner/pkg/core"
	"netrunner/pkg/types"
)

// --- Network Generation ---

var serviceStates = []types.ServiceState{types.StateOpen, types.StateOpen, types.StateFiltered, types.StateClosed}

// GenerateNetwork builds the whole graph from seed. Nodes are created
// category by category in catalog order and then wired together.
func GenerateNetwork(seed int64, r RNG, cat *Catalog) *Network {
	net := &Network{Seed: seed, Nodes: map[string]*types.Node{}}

	byType := map[types.NetworkType][]*types.Node{}
	var order []types.NetworkType
	for _, q := range cat.Quotas {
		count := randRange(r, q.Count)
		for i := 0; i < count; i++ {
			n := generateNode(r, cat, seed, len(net.Order), q)
			for net.Nodes[n.UID] != nil {
				n.UID = nodeUID(r, seed, len(net.Order))
			}
			net.add(n)
			if _, seen := byType[q.Type]; !seen {
				order = append(order, q.Type)
			}
			byType[q.Type] = append(byType[q.Type], n)
		}
	}

	connect(r, order, byType)
	return net
}

// nodeUID derives a 12 hex character id from the seed, the node ordinal and
// a draw from the stream.
func nodeUID(r RNG, seed int64, ordinal int) string {
	input := fmt.Sprintf("%d-%d-%d", seed, ordinal, r.IntN(1<<30))
	return core.Hash([]byte(input))[:12]
}

func generateNode(r RNG, cat *Catalog, seed int64, ordinal int, q NodeQuota) *types.Node {
	uid := nodeUID(r, seed, ordinal)
	security := randRange(r, q.Security)
	ice := max(1, security-randInt(r, 0, 2))
	ip := fmt.Sprintf("%d.%d.%d.%d", randInt(r, 1, 255), randInt(r, 0, 255), randInt(r, 0, 255), randInt(r, 1, 254))

	serviceCount := randInt(r, 3, 8)
	services := make([]types.Service, 0, serviceCount)
	usedPorts := map[int]bool{}
	for i := 0; i < serviceCount; i++ {
		tpl := pick(r, cat.Services)
		port := tpl.Port
		if usedPorts[port] {
			port += randInt(r, 1, 1000)
		}
		usedPorts[port] = true

		state := pick(r, serviceStates)
		vulnCount := randInt(r, 0, 2)
		if state == types.StateOpen {
			vulnCount = randInt(r, 1, 5)
		}
		svc := types.Service{
			Name:            tpl.Name,
			Version:         tpl.Version,
			Port:            port,
			State:           state,
			Vulnerabilities: GenerateVulnerabilities(r, cat, tpl.Name, vulnCount),
		}
		if chance(r, 0.4) {
			svc.Encryption = &types.EncryptedData{
				EncryptionType: pick(r, types.EncryptionTypes),
				DataSize:       randInt(r, 100, 10000),
				Value:          randInt(r, 500, 5000),
				Difficulty:     uniform(r, 0.3, 0.9),
			}
		}
		services = append(services, svc)
	}

	name := orgName(r, &cat.Naming, q.Type)
	maxFirewall := security * randInt(r, 80, 150)
	dataValue := security * randInt(r, 100, 500)

	var honeypots []types.Honeypot
	if security >= HoneypotMinSecurity {
		for i, n := 0, randInt(r, 1, 3); i < n; i++ {
			honeypots = append(honeypots, types.Honeypot{
				Port:            randInt(r, 1024, 65535),
				FakeService:     pick(r, cat.HoneypotServices),
				DetectionChance: uniform(r, 0.6, 0.9),
				TraceIncrease:   randInt(r, 20, 40),
			})
		}
	}

	employees := GenerateEmployees(r, cat, randInt(r, 5, 30), name)

	var traffic []types.EncryptedData
	if chance(r, 0.5) {
		for i, n := 0, randInt(r, 1, 5); i < n; i++ {
			traffic = append(traffic, types.EncryptedData{
				EncryptionType: pick(r, types.EncryptionTypes),
				DataSize:       randInt(r, 1000, 50000),
				Value:          randInt(r, 200, 3000),
				Difficulty:     uniform(r, 0.4, 0.95),
			})
		}
	}

	return &types.Node{
		UID:                 uid,
		Name:                name,
		IPAddress:           ip,
		NetworkType:         q.Type,
		SecurityRating:      security,
		FirewallStrength:    maxFirewall,
		MaxFirewall:         maxFirewall,
		ICELevel:            ice,
		Services:            services,
		DiscoveredServices:  types.NewSet[int](),
		DiscoveredVulns:     types.NewSet[string](),
		DataValue:           dataValue,
		TraceSpeed:          0.5 + float64(security)*0.3,
		Honeypots:           honeypots,
		HasSIEM:             security >= 6,
		HasIncidentResponse: security >= 7,
		AdminSkill:          max(1, security-3),
		NetworkSegment:      types.Segments[min(2, security/4)],
		Employees:           employees,
		EncryptedTraffic:    traffic,
	}
}

func orgName(r RNG, nm *Naming, t types.NetworkType) string {
	switch t {
	case types.NetworkGovernment:
		return fmt.Sprintf("%s %s", pick(r, nm.GovPrefixes), pick(r, nm.GovBodies))
	case types.NetworkMilitary:
		return fmt.Sprintf("%s Node %d", pick(r, nm.MilitaryUnits), randInt(r, 1, 99))
	case types.NetworkCriminal:
		return fmt.Sprintf("Dark%s %d", pick(r, nm.DarkSites), randInt(r, 1, 999))
	case types.NetworkInfrastructure:
		return fmt.Sprintf("%s %s %d", pick(r, nm.InfraKinds), pick(r, nm.InfraGrids), randInt(r, 1, 50))
	}
	return fmt.Sprintf("%s %s", pick(r, nm.CorpPrefixes), pick(r, nm.CorpSuffixes))
}

// connect wires 2-5 intra-category edges per node, then 2-4 random edges
// between every pair of categories. Reachability is not checked.
func connect(r RNG, order []types.NetworkType, byType map[types.NetworkType][]*types.Node) {
	link := func(a, b *types.Node) {
		a.Connect(b.UID)
		b.Connect(a.UID)
	}

	for _, t := range order {
		group := byType[t]
		for _, n := range group {
			want := randInt(r, 2, 5)
			var candidates []*types.Node
			for _, c := range group {
				if c.UID != n.UID && !n.ConnectedTo(c.UID) {
					candidates = append(candidates, c)
				}
			}
			for _, c := range sample(r, candidates, want) {
				link(n, c)
			}
		}
	}

	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := byType[order[i]], byType[order[j]]
			for k, n := 0, randInt(r, 2, 4); k < n; k++ {
				link(pick(r, a), pick(r, b))
			}
		}
	}
}

// --- Node Content ---

// GenerateVulnerabilities samples count distinct templates and jitters
// severity and patch level per instance.
func GenerateVulnerabilities(r RNG, cat *Catalog, serviceName string, count int) []types.Vulnerability {
	var out []types.Vulnerability
	for _, tpl := range sample(r, cat.Exploits, count) {
		out = append(out, types.Vulnerability{
			Name:                fmt.Sprintf("%s (%s)", tpl.Name, serviceName),
			ExploitType:         tpl.Type,
			Severity:            tpl.Severity + uniform(r, -0.1, 0.1),
			PatchLevel:          tpl.PatchLevel + randInt(r, -1, 1),
			DiscoveryDifficulty: tpl.DiscoveryDifficulty,
			FirewallDamage:      tpl.Damage,
			TraceCost:           tpl.TraceCost,
			SuccessRateBase:     tpl.SuccessRate,
			RequiresTool:        string(tpl.RequiresTool),
		})
	}
	return out
}

// EmailDomain is the lower-cased organisation name with spaces removed,
// cut to 15 characters.
func EmailDomain(org string) string {
	d := strings.ToLower(strings.ReplaceAll(org, " ", ""))
	if len(d) > 15 {
		d = d[:15]
	}
	return d + ".com"
}

func GenerateEmployees(r RNG, cat *Catalog, count int, org string) []types.Employee {
	domain := EmailDomain(org)
	out := make([]types.Employee, 0, count)
	for i := 0; i < count; i++ {
		first := pick(r, cat.FirstNames)
		last := pick(r, cat.LastNames)
		out = append(out, types.Employee{
			Name:                   first + " " + last,
			Email:                  fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), domain),
			Department:             pick(r, cat.Departments),
			AccessLevel:            randInt(r, 1, 5),
			SocialMediaActivity:    uniform(r, 0.3, 0.9),
			PhishingSusceptibility: uniform(r, 0.2, 0.8),
		})
	}
	return out
}
