package settlement

import (
	"fmt"
	"math/rand"
)

// Nation is a read-only description loaded from parameters, plus the town
// names already handed out.
type Nation struct {
	Name      string
	Colour    string
	TownNames []string
	UsedNames map[string]struct{}
}

// Nations is the nation registry, keyed by name.
type Nations map[string]*Nation

func NewNation(name, colour string, townNames []string) *Nation {
	return &Nation{
		Name:      name,
		Colour:    colour,
		TownNames: townNames,
		UsedNames: map[string]struct{}{},
	}
}

// RandomTownName draws an unused town name for the nation. Once the list is
// exhausted names gain a numeric suffix. An unknown nation is an error and
// the caller skips the founding.
func (n Nations) RandomTownName(nation string, rng *rand.Rand) (string, error) {
	entry, ok := n[nation]
	if !ok {
		return "", fmt.Errorf("nation %q not found", nation)
	}
	if len(entry.TownNames) == 0 {
		return "", fmt.Errorf("nation %q has no town names", nation)
	}
	var unused []string
	for _, name := range entry.TownNames {
		if _, used := entry.UsedNames[name]; !used {
			unused = append(unused, name)
		}
	}
	var name string
	if len(unused) > 0 {
		name = unused[rng.Intn(len(unused))]
	} else {
		base := entry.TownNames[rng.Intn(len(entry.TownNames))]
		for i := 2; ; i++ {
			name = fmt.Sprintf("%s %d", base, i)
			if _, used := entry.UsedNames[name]; !used {
				break
			}
		}
	}
	entry.UsedNames[name] = struct{}{}
	return name, nil
}
