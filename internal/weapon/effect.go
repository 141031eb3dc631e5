package weapon

import "github.com/starwake/engine/internal/datafile"

// Effect describes a visual (and optionally audible) effect spawned when a
// weapon fires, hits or dies.
type Effect struct {
	Name     string
	Lifetime int
	Sound    string
}

// EffectCount is one entry of an effect multiset.
type EffectCount struct {
	Effect *Effect
	Count  int
}

// Load fills the effect from an `effect <name>` node.
func (e *Effect) Load(node *datafile.Node) {
	if node.Size() >= 2 {
		e.Name = node.Token(1)
	}
	for _, child := range node.Children() {
		switch child.Token(0) {
		case "lifetime":
			e.Lifetime = int(child.Value(1))
		case "sound":
			e.Sound = child.Token(1)
		}
	}
}

func addEffect(list []EffectCount, effect *Effect, count int) []EffectCount {
	if effect == nil || count <= 0 {
		return list
	}
	for i := range list {
		if list[i].Effect == effect {
			list[i].Count += count
			return list
		}
	}
	return append(list, EffectCount{Effect: effect, Count: count})
}
