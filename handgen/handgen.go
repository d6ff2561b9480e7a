// Package handgen enumerates the 1326 distinct two-card hole combinations
// and collapses them into the 169 canonical hand-types ("AA", "AKs",
// "72o", ...) used by the JSON strategy export and by post-training
// infoset sweeps. It also maps a seat index to the human-readable
// position label the export keys on.
package handgen

import (
	"sort"

	"nlhe-solver/cards"
)

var rankChars = [cards.NumRanks]byte{'2', '3', '4', '5', '6', '7', '8', '9', 'T', 'J', 'Q', 'K', 'A'}

// CanonicalType collapses a two-card hole hand into its 169-way canonical
// type: two rank characters, higher rank first, followed by "s" (suited),
// "o" (offsuit), or nothing for a pocket pair.
func CanonicalType(a, b cards.Card) string {
	ra, rb := a.Rank(), b.Rank()
	if ra < rb {
		ra, rb = rb, ra
	}
	if ra == rb {
		return string([]byte{rankChars[ra], rankChars[rb]})
	}
	suited := byte('o')
	if a.Suit() == b.Suit() {
		suited = 's'
	}
	return string([]byte{rankChars[ra], rankChars[rb], suited})
}

// All1326 returns every distinct unordered two-card hole combination out
// of the 52-card deck, each pair ordered (lower index, higher index).
func All1326() [][2]cards.Card {
	out := make([][2]cards.Card, 0, 1326)
	for i := 0; i < cards.NumCards; i++ {
		for j := i + 1; j < cards.NumCards; j++ {
			out = append(out, [2]cards.Card{cards.Card(i), cards.Card(j)})
		}
	}
	return out
}

// All169 returns the 169 canonical hand-type strings in a stable order:
// pairs and suited/offsuit combos sorted by descending top rank, then
// descending kicker rank, pairs before suited before offsuit at equal
// ranks.
func All169() []string {
	seen := make(map[string]bool, 169)
	out := make([]string, 0, 169)
	for _, pair := range All1326() {
		t := CanonicalType(pair[0], pair[1])
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return typeRank(out[i]) > typeRank(out[j])
	})
	return out
}

// typeRank orders canonical types for All169's stable sort: by top rank
// descending, then kicker rank descending, then pair > suited > offsuit.
func typeRank(t string) int {
	hi := rankValue(t[0])
	lo := rankValue(t[1])
	kind := 0 // offsuit
	if len(t) == 2 {
		kind = 2 // pair
	} else if t[2] == 's' {
		kind = 1 // suited
	}
	return hi*1000 + lo*10 + kind
}

func rankValue(c byte) int {
	for i, rc := range rankChars {
		if rc == c {
			return i
		}
	}
	return -1
}

// PositionLabel maps a seat index to its human-readable table position
// relative to the button, for a table of numPlayers seats. Labels follow
// standard convention: SB, BB, UTG, then MP/CO filling the seats between
// UTG and the button as the table grows; heads-up collapses to SB/BB only.
func PositionLabel(seat, numPlayers, button int) string {
	if numPlayers == 2 {
		if seat == button {
			return "SB"
		}
		return "BB"
	}
	offset := ((seat - button) % numPlayers + numPlayers) % numPlayers
	switch offset {
	case 0:
		return "BTN"
	case 1:
		return "SB"
	case 2:
		return "BB"
	case 3:
		return "UTG"
	}
	// Seats between UTG and the button: the last one is CO, everything
	// else in between is MP.
	if offset == numPlayers-1 {
		return "CO"
	}
	return "MP"
}
