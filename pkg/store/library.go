package store

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/shelf"
)

// Item types of a Book.
const (
	ItemTypeBook    = "book"
	ItemTypeWebsite = "website"
)

// SpineStyles are the spine decorations a new book is drawn with.
var SpineStyles = []string{"simple", "classic", "modern", "pattern-dots", "pattern-lines"}

// Default placements for restored items.
var (
	RestoredBookPosition     = shelf.Position{Shelf: 0, X: 50}
	RestoredOrnamentPosition = shelf.Position{Shelf: 0, X: 100}
)

// Book is a book or website on the shelf.
type Book struct {
	ID              string          `json:"id" bson:"id"`
	ItemType        string          `json:"itemType,omitempty" bson:"item_type,omitempty"`
	URL             string          `json:"url,omitempty" bson:"url,omitempty"`
	Title           string          `json:"title" bson:"title"`
	Author          string          `json:"author" bson:"author"`
	Rating          float64         `json:"rating" bson:"rating"`
	Genre           string          `json:"genre" bson:"genre"`
	Summary         string          `json:"summary" bson:"summary"`
	EmotionalImpact int             `json:"emotionalImpact" bson:"emotional_impact"`
	PersonalNote    string          `json:"personalNote" bson:"personal_note"`
	Color           string          `json:"color" bson:"color"`
	SpineStyle      string          `json:"spineStyle" bson:"spine_style"`
	Height          float64         `json:"height" bson:"height"`
	Rotation        float64         `json:"rotation" bson:"rotation"`
	Position        *shelf.Position `json:"position,omitempty" bson:"position,omitempty"`
}

// IsWebsite reports whether b is a saved website rather than a book.
// An empty item type means book.
func (b Book) IsWebsite() bool { return b.ItemType == ItemTypeWebsite }

// Ornament is a non-book shelf item such as the music player.
type Ornament struct {
	ID       string          `json:"id" bson:"id"`
	Type     string          `json:"type" bson:"type"`
	Position *shelf.Position `json:"position,omitempty" bson:"position,omitempty"`
}

// Draft is the item record produced by the add flow.
type Draft struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Rating          float64 `json:"rating"`
	Genre           string  `json:"genre"`
	Summary         string  `json:"summary"`
	EmotionalImpact int     `json:"emotionalImpact"`
	PersonalNote    string  `json:"personalNote"`
	Color           string  `json:"color"`
	URL             string  `json:"url,omitempty"`
}

// Validate checks the fields a shelf cannot render without.
func (d Draft) Validate(itemType string) error {
	if d.Title == "" {
		return errors.New(errors.ErrCodeInvalidInput, "title cannot be empty")
	}
	if d.Rating < 0 || d.Rating > 5 {
		return errors.New(errors.ErrCodeInvalidInput, "rating must be between 0 and 5, got %v", d.Rating)
	}
	if d.EmotionalImpact < 0 || d.EmotionalImpact > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "emotional impact must be between 0 and 100, got %d", d.EmotionalImpact)
	}
	if err := errors.ValidateColor(d.Color); err != nil {
		return err
	}
	switch itemType {
	case ItemTypeBook:
	case ItemTypeWebsite:
		if err := errors.ValidateURL(d.URL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown item type %q", itemType)
	}
	return nil
}

// Library is everything the item store persists.
type Library struct {
	Books             []Book     `json:"books" bson:"books"`
	Ornaments         []Ornament `json:"ornaments" bson:"ornaments"`
	ArchivedBooks     []Book     `json:"archivedBooks" bson:"archived_books"`
	ArchivedOrnaments []Ornament `json:"archivedOrnaments" bson:"archived_ornaments"`

	Title    string `json:"title,omitempty" bson:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Theme    string `json:"theme,omitempty" bson:"theme,omitempty"`
}

// Default returns the starter library: three books on the first shelf and
// the music player on the second.
func Default() *Library {
	return &Library{
		Books: []Book{
			{ID: "1", ItemType: ItemTypeBook, Title: "norwegian wood", Author: "haruki murakami", Rating: 4, Genre: "fiction", Summary: "a nostalgic story of loss and sexuality.", EmotionalImpact: 80, PersonalNote: "made me feel lonely but in a good way.", Color: "#daeaf6", SpineStyle: "simple", Height: 95, Rotation: -1, Position: &shelf.Position{Shelf: 0, X: 50}},
			{ID: "2", ItemType: ItemTypeBook, Title: "educated", Author: "tara westover", Rating: 5, Genre: "memoir", Summary: "a woman who grows up in a survivalist family goes to college.", EmotionalImpact: 90, PersonalNote: "incredible resilience.", Color: "#fce1e4", SpineStyle: "pattern-lines", Height: 92, Rotation: 1, Position: &shelf.Position{Shelf: 0, X: 110}},
			{ID: "3", ItemType: ItemTypeBook, Title: "atomic habits", Author: "james clear", Rating: 4.5, Genre: "self-help", Summary: "tiny changes, remarkable results.", EmotionalImpact: 40, PersonalNote: "very practical.", Color: "#fcf4dd", SpineStyle: "modern", Height: 88, Rotation: 0, Position: &shelf.Position{Shelf: 0, X: 170}},
		},
		Ornaments: []Ornament{
			{ID: "fm-player-default", Type: shelf.VariantMusicPlayer, Position: &shelf.Position{Shelf: 1, X: 100}},
		},
		ArchivedBooks:     []Book{},
		ArchivedOrnaments: []Ornament{},
		Title:             "the wonderful book shelf",
		Subtitle:          "curated with love",
		Theme:             "neutral",
	}
}

// Clone returns a deep copy of l.
func (l *Library) Clone() *Library {
	data, err := json.Marshal(l)
	if err != nil {
		panic("store: marshal library: " + err.Error())
	}
	var out Library
	if err := json.Unmarshal(data, &out); err != nil {
		panic("store: unmarshal library: " + err.Error())
	}
	return normalize(&out)
}

// Items returns the core's view of the library: books first, then
// ornaments.
func (l *Library) Items() []shelf.Item {
	items := make([]shelf.Item, 0, len(l.Books)+len(l.Ornaments))
	for _, b := range l.Books {
		items = append(items, shelf.Item{ID: b.ID, Kind: shelf.KindBook, Position: clonePosition(b.Position)})
	}
	for _, o := range l.Ornaments {
		items = append(items, shelf.Item{ID: o.ID, Kind: shelf.KindOrnament, Variant: o.Type, Position: clonePosition(o.Position)})
	}
	return items
}

// Count returns the number of items on the shelves.
func (l *Library) Count() int { return len(l.Books) + len(l.Ornaments) }

// Book returns the shelved book with the given id.
func (l *Library) Book(id string) (Book, bool) {
	i := slices.IndexFunc(l.Books, func(b Book) bool { return b.ID == id })
	if i < 0 {
		return Book{}, false
	}
	return l.Books[i], true
}

// ApplyReorder writes committed placements back onto the items of kind.
// Items of that kind missing from placements are removed from the shelf,
// matching the host contract that a Reorder carries the complete list.
func (l *Library) ApplyReorder(kind shelf.Kind, placements []shelf.Placement) error {
	byID := make(map[string]shelf.Placement, len(placements))
	for _, p := range placements {
		byID[p.ID] = p
	}

	switch kind {
	case shelf.KindBook:
		books := make([]Book, 0, len(placements))
		for _, b := range l.Books {
			if p, ok := byID[b.ID]; ok {
				b.Position = &shelf.Position{Shelf: p.Shelf, X: p.X}
				books = append(books, b)
			}
		}
		l.Books = books
	case shelf.KindOrnament:
		ornaments := make([]Ornament, 0, len(placements))
		for _, o := range l.Ornaments {
			if p, ok := byID[o.ID]; ok {
				o.Position = &shelf.Position{Shelf: p.Shelf, X: p.X}
				ornaments = append(ornaments, o)
			}
		}
		l.Ornaments = ornaments
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q", kind)
	}
	return nil
}

// Archive moves an item from the shelf to the archive.
func (l *Library) Archive(id string, kind shelf.Kind) error {
	switch kind {
	case shelf.KindBook:
		b, rest, ok := take(l.Books, func(b Book) bool { return b.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.Books = rest
		l.ArchivedBooks = append(l.ArchivedBooks, b)
	case shelf.KindOrnament:
		o, rest, ok := take(l.Ornaments, func(o Ornament) bool { return o.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.Ornaments = rest
		l.ArchivedOrnaments = append(l.ArchivedOrnaments, o)
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q", kind)
	}
	return nil
}

// Restore moves an archived item back to the front of its shelf list at
// the default restore position.
func (l *Library) Restore(id string, kind shelf.Kind) error {
	switch kind {
	case shelf.KindBook:
		b, rest, ok := take(l.ArchivedBooks, func(b Book) bool { return b.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.ArchivedBooks = rest
		p := RestoredBookPosition
		b.Position = &p
		l.Books = append([]Book{b}, l.Books...)
	case shelf.KindOrnament:
		o, rest, ok := take(l.ArchivedOrnaments, func(o Ornament) bool { return o.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.ArchivedOrnaments = rest
		p := RestoredOrnamentPosition
		o.Position = &p
		l.Ornaments = append([]Ornament{o}, l.Ornaments...)
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q", kind)
	}
	return nil
}

// DeleteForever removes an archived item permanently.
func (l *Library) DeleteForever(id string, kind shelf.Kind) error {
	switch kind {
	case shelf.KindBook:
		_, rest, ok := take(l.ArchivedBooks, func(b Book) bool { return b.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.ArchivedBooks = rest
	case shelf.KindOrnament:
		_, rest, ok := take(l.ArchivedOrnaments, func(o Ornament) bool { return o.ID == id })
		if !ok {
			return notFound(kind, id)
		}
		l.ArchivedOrnaments = rest
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q", kind)
	}
	return nil
}

// AddBook validates d, turns it into a new book and appends it.
// A nil rng uses the global source.
func (l *Library) AddBook(d Draft, itemType string, rng *rand.Rand) (Book, error) {
	books, err := l.AddBooks([]Draft{d}, itemType, rng)
	if err != nil {
		return Book{}, err
	}
	return books[0], nil
}

// AddBooks adds a batch of drafts of the same item type. Nothing is added
// if any draft is invalid.
func (l *Library) AddBooks(drafts []Draft, itemType string, rng *rand.Rand) ([]Book, error) {
	added := make([]Book, 0, len(drafts))
	for i, d := range drafts {
		if err := d.Validate(itemType); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		b, err := newBook(d, itemType, rng)
		if err != nil {
			return nil, err
		}
		added = append(added, b)
	}
	l.Books = append(l.Books, added...)
	return added, nil
}

// AddOrnament places a new ornament of the given variant on the first
// shelf.
func (l *Library) AddOrnament(variant string) (Ornament, error) {
	if variant == "" {
		return Ornament{}, errors.New(errors.ErrCodeInvalidInput, "ornament variant cannot be empty")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Ornament{}, errors.Wrap(errors.ErrCodeInternal, err, "generate ornament id")
	}
	p := RestoredOrnamentPosition
	o := Ornament{ID: id.String(), Type: variant, Position: &p}
	l.Ornaments = append(l.Ornaments, o)
	return o, nil
}

func newBook(d Draft, itemType string, rng *rand.Rand) (Book, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Book{}, errors.Wrap(errors.ErrCodeInternal, err, "generate book id")
	}
	intN, float := rand.IntN, rand.Float64
	if rng != nil {
		intN, float = rng.IntN, rng.Float64
	}
	url := ""
	if itemType == ItemTypeWebsite {
		url = d.URL
	}
	return Book{
		ID:              id.String(),
		ItemType:        itemType,
		URL:             url,
		Title:           d.Title,
		Author:          d.Author,
		Rating:          d.Rating,
		Genre:           d.Genre,
		Summary:         d.Summary,
		EmotionalImpact: d.EmotionalImpact,
		PersonalNote:    d.PersonalNote,
		Color:           d.Color,
		SpineStyle:      SpineStyles[intN(len(SpineStyles))],
		Height:          85 + float()*15,
		Rotation:        float()*4 - 2,
		Position:        &shelf.Position{Shelf: 0, X: RestoredBookPosition.X},
	}, nil
}

// take removes the first element matching pred and returns it with the
// remaining elements.
func take[T any](s []T, pred func(T) bool) (T, []T, bool) {
	var zero T
	i := slices.IndexFunc(s, pred)
	if i < 0 {
		return zero, s, false
	}
	v := s[i]
	rest := make([]T, 0, len(s)-1)
	rest = append(rest, s[:i]...)
	rest = append(rest, s[i+1:]...)
	return v, rest, true
}

func notFound(kind shelf.Kind, id string) error {
	return errors.New(errors.ErrCodeItemNotFound, "%s %q not found", kind, id)
}

func clonePosition(p *shelf.Position) *shelf.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
