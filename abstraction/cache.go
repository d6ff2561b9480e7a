package abstraction

import (
	"nlhe-solver/common/defaultmap"
	"nlhe-solver/common/safemap"
	"nlhe-solver/game"
)

// Cache memoizes GetPossibleActionSpecs by player and abstraction context,
// one safemap per player inside an outer defaultmap so a never-before-seen
// player id gets its own cache lazily instead of needing pre-sizing.
// Two states with the same context key always abstract to the same action
// set (the betting history already encodes every prior sizing), so this
// is a pure memoization layer, never a source of divergent behavior.
type Cache struct {
	byPlayer defaultmap.DefaultSafemap[int, safemap.Safemap[string, []ActionSpec]]
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		byPlayer: defaultmap.New[int](func() safemap.Safemap[string, []ActionSpec] {
			return safemap.New[string, []ActionSpec]()
		}),
	}
}

// Get returns the abstracted action set for gs's current player under
// contextKey, computing and storing it on first sight.
func (c *Cache) Get(gs *game.GameState, contextKey string) []ActionSpec {
	playerCache := c.byPlayer.Get(gs.CurrentPlayer())
	specs, _ := playerCache.GetOrCreate(contextKey, func() []ActionSpec {
		return GetPossibleActionSpecs(gs)
	})
	return specs
}
