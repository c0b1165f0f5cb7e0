package shelf

// Kind discriminates the two families of shelf items.
type Kind string

const (
	// KindBook is a book or website spine.
	KindBook Kind = "book"
	// KindOrnament is a decorative or interactive non-book item.
	KindOrnament Kind = "ornament"
)

// Kinds lists every item kind in the order effects are emitted.
var Kinds = []Kind{KindBook, KindOrnament}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindBook || k == KindOrnament
}

// VariantMusicPlayer is the ornament variant of the togglable music widget.
const VariantMusicPlayer = "fm-player"

// Position is a stored (shelf, x) pair as kept by the item store.
type Position struct {
	Shelf int     `json:"shelfId" bson:"shelf_id"`
	X     float64 `json:"xOffset" bson:"x_offset"`
}

// Item is the core's view of an externally owned item.
// Position is nil when the store holds no placement for it.
type Item struct {
	ID       string
	Kind     Kind
	Variant  string
	Position *Position
}

// Placement is the updated position of one item, emitted on commit.
type Placement struct {
	ID    string  `json:"id"`
	Shelf int     `json:"shelfId"`
	X     float64 `json:"x"`
}

// Entry is one item inside a layout snapshot.
type Entry struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	Variant string  `json:"variant,omitempty"`
	Shelf   int     `json:"shelfId"`
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
}

// Right returns the x coordinate of the entry's right edge.
func (e Entry) Right() float64 { return e.X + e.Width }

// CenterX returns the horizontal centre of the entry.
func (e Entry) CenterX() float64 { return e.X + e.Width/2 }

// Placement returns the persisted form of the entry.
func (e Entry) Placement() Placement {
	return Placement{ID: e.ID, Shelf: e.Shelf, X: e.X}
}
