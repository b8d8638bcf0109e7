package placement

// Item is a placed card keyed by a stable identifier such as a file path.
type Item struct {
	ID   string
	Rect Rect
}

// Engine holds the cards placed during one panel session. The center item
// is placed with [Engine.PlaceCenter]; every later item avoids the center
// and all items placed before it.
//
// The zero value is not usable; create engines with [NewEngine].
type Engine struct {
	cfg    Config
	center *Item
	order  []string
	items  map[string]Item
}

// NewEngine creates an engine using cfg with zero fields defaulted.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:   cfg.WithDefaults(),
		items: make(map[string]Item),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// PlaceCenter puts the center item at the middle of b, replacing any
// previous center. No collision test is made.
func (e *Engine) PlaceCenter(id string, b Bounds) Item {
	it := Item{ID: id, Rect: RectAt(Center(b), e.cfg.CardSize())}
	e.center = &it
	return it
}

// Place searches a position for item index of total and records it.
// Placing an ID that is already present replaces the earlier placement,
// which then no longer counts as an obstacle.
func (e *Engine) Place(id string, index, total int, b Bounds) (Item, Result) {
	if _, ok := e.items[id]; ok {
		e.remove(id)
	}

	res := Search(index, total, b, e.Obstacles(), e.cfg.CardSize(), e.cfg)
	it := Item{ID: id, Rect: res.Rect}
	e.items[id] = it
	e.order = append(e.order, id)
	return it, res
}

// Obstacles returns the rectangles a new item must avoid: the center item
// first, then placed items in placement order.
func (e *Engine) Obstacles() []Rect {
	out := make([]Rect, 0, len(e.order)+1)
	if e.center != nil {
		out = append(out, e.center.Rect)
	}
	for _, id := range e.order {
		out = append(out, e.items[id].Rect)
	}
	return out
}

// CenterItem returns the center item, if placed.
func (e *Engine) CenterItem() (Item, bool) {
	if e.center == nil {
		return Item{}, false
	}
	return *e.center, true
}

// Item looks up a placed item by ID. The center item is not included.
func (e *Engine) Item(id string) (Item, bool) {
	it, ok := e.items[id]
	return it, ok
}

// Items returns the placed items in placement order.
func (e *Engine) Items() []Item {
	out := make([]Item, len(e.order))
	for i, id := range e.order {
		out[i] = e.items[id]
	}
	return out
}

// Len returns the number of placed items, excluding the center.
func (e *Engine) Len() int { return len(e.order) }

// Clear forgets every placed item, including the center.
func (e *Engine) Clear() {
	e.center = nil
	e.order = nil
	e.items = make(map[string]Item)
}

func (e *Engine) remove(id string) {
	delete(e.items, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			return
		}
	}
}
