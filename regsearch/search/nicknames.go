package search

import (
	_ "embed"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

//go:embed nicknames.toml
var defaultNicknameTable []byte

type nicknameTable struct {
	Group []nicknameGroup `toml:"group"`
}

type nicknameGroup struct {
	Names []string `toml:"names"`
}

// Nicknames is the first-name equivalence lookup used for EXACT
// classification (DAVE registered against DAVID and so on). Membership in a
// shared group makes two names equivalent; a name may belong to more than
// one group.
type Nicknames struct {
	groups map[string][]int
}

// DefaultNicknames loads the nickname table embedded in the binary.
func DefaultNicknames() *Nicknames {
	n, err := parseNicknames(defaultNicknameTable)
	if err != nil {
		// The embedded table is fixed at build time; a parse failure here is
		// a build defect.
		panic(err)
	}
	return n
}

// LoadNicknames reads a nickname table from a TOML file, letting deployments
// extend the built-in equivalences without a rebuild.
func LoadNicknames(path string) (*Nicknames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read nickname table %s", path)
	}
	return parseNicknames(data)
}

func parseNicknames(data []byte) (*Nicknames, error) {
	var table nicknameTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, "failed to parse nickname table")
	}

	groups := make(map[string][]int)
	for i, g := range table.Group {
		for _, name := range g.Names {
			key := Normalize(name).Key
			if key == "" {
				continue
			}
			groups[key] = append(groups[key], i)
		}
	}
	return &Nicknames{groups: groups}, nil
}

// AreEquivalent reports whether the two first names share a nickname group.
// Inputs are normalized before lookup, so raw and already-normalized names
// both work. Identical names are not the lookup's concern; it answers false
// for them unless they happen to share a group.
func (n *Nicknames) AreEquivalent(a, b string) bool {
	ga, ok := n.groups[Normalize(a).Key]
	if !ok {
		return false
	}
	gb, ok := n.groups[Normalize(b).Key]
	if !ok {
		return false
	}
	for _, i := range ga {
		for _, j := range gb {
			if i == j {
				return true
			}
		}
	}
	return false
}
