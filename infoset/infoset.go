// Package infoset builds the canonical string key identifying a player's
// decision point: hole cards, street, board, and action history. Suit
// permutations of equivalent hands collapse to the same key because hole
// and board cards are sorted by index before rendering.
package infoset

import (
	"strconv"
	"strings"

	"nlhe-solver/cards"
	"nlhe-solver/game"
)

const maxBoardCards = 5

// Key builds the infoset key for player idx from a live GameState.
func Key(gs *game.GameState, idx int) string {
	return build(idx, gs.Hole(idx), gs.Street(), gs.Board(), gs.History())
}

// KeyFromComponents builds an infoset key from an explicitly supplied hole
// hand and history string, taking street and board from ctx. It is used
// for post-training strategy queries that sweep the 169 canonical hand
// types rather than sampling a hand from a live trajectory.
func KeyFromComponents(idx int, hole [2]cards.Card, history string, ctx *game.GameState) string {
	return build(idx, hole, ctx.Street(), ctx.Board(), history)
}

// ContextKey builds a key identifying the action-abstraction context at gs
// for the current player: street, board, and history, but not hole cards.
// Because the betting history string already encodes every prior
// abstracted action's sizing, two states sharing a ContextKey always offer
// the same abstracted action set, making it safe to memoize
// GetPossibleActionSpecs by this key (see abstraction.Cache).
func ContextKey(gs *game.GameState) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(gs.Street())))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(len(gs.Board())))
	for _, c := range cards.Sorted(gs.Board()) {
		sb.WriteString(c.String())
	}
	sb.WriteByte('|')
	sb.WriteString(gs.History())
	return sb.String()
}

func build(idx int, hole [2]cards.Card, street game.Street, board []cards.Card, history string) string {
	var sb strings.Builder
	sb.WriteByte('P')
	sb.WriteString(strconv.Itoa(idx))
	sb.WriteByte(':')
	for _, c := range cards.Sorted(hole[:]) {
		sb.WriteString(c.String())
	}
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(int(street)))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(len(board)))
	for _, c := range cards.Sorted(board) {
		sb.WriteString(c.String())
	}
	for i := len(board); i < maxBoardCards; i++ {
		sb.WriteString("--")
	}
	sb.WriteByte('|')
	sb.WriteString(history)
	return sb.String()
}
