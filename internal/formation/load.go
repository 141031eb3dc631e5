package formation

import (
	"github.com/starwake/engine/internal/datafile"
	"github.com/starwake/engine/pkg/core"
)

// Load fills the pattern from a `formation <name>` node:
//
//	formation "Delta"
//		line 0 0 3 0
//			spacing 100
//			repeat 50 50
//				increase 1
//		rotatable 120
//		flippable y
//
// Incomplete entries are skipped and missing values are zero.
func (p *Pattern) Load(node *datafile.Node) {
	if node.Size() >= 2 {
		p.name = node.Token(1)
	}
	p.rotatable = -1
	for _, child := range node.Children() {
		switch key := child.Token(0); {
		case key == "line" && child.Size() >= 5:
			p.lines = append(p.lines, loadLine(child))
		case key == "rotatable" && child.Size() >= 2:
			p.rotatable = int(child.Value(1))
		case key == "flippable":
			for i := 1; i < child.Size(); i++ {
				switch child.Token(i) {
				case "x":
					p.flippableX = true
				case "y":
					p.flippableY = true
				}
			}
		}
	}
}

func loadLine(node *datafile.Node) Line {
	line := NewLine(node.Value(1), node.Value(2), round(node.Value(3)), node.Value(4))
	for _, grand := range node.Children() {
		switch {
		case grand.Size() >= 2 && grand.Token(0) == "spacing":
			line.Spacing = grand.Value(1)
		case grand.Size() >= 3 && grand.Token(0) == "repeat":
			line.RepeatVector = core.NewPoint(grand.Value(1), grand.Value(2))
			line.SlotsIncrease = 0
			for _, inc := range grand.Children() {
				if inc.Size() >= 2 && inc.Token(0) == "increase" {
					line.SlotsIncrease = round(inc.Value(1))
				}
			}
		}
	}
	return line
}

func round(v float64) int {
	return int(v + .5)
}
