package accountlist

// reentrancyGuard marks a span during which the controller mutates its own
// list. acquire returns the release func; call it with defer so the flag is
// restored even if the mutation panics.
type reentrancyGuard struct {
	active bool
}

func (g *reentrancyGuard) acquire() (release func()) {
	prev := g.active
	g.active = true
	return func() { g.active = prev }
}

func (g *reentrancyGuard) held() bool { return g.active }
