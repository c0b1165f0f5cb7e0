package shelf_test

import (
	"fmt"

	"github.com/matzehuels/shelfspace/pkg/shelf"
)

func ExampleSolve() {
	g := shelf.DefaultGeometry()
	settled := shelf.Layout{
		{ID: "A", Kind: shelf.KindBook, Shelf: 0, X: 50, Width: 56},
		{ID: "B", Kind: shelf.KindBook, Shelf: 0, X: 200, Width: 56},
		{ID: "C", Kind: shelf.KindBook, Shelf: 1, X: 500, Width: 56},
	}

	// Grab C 10px right of its left edge and carry its centre to x=110 on shelf 0.
	d := shelf.Pickup(g, settled[2], 510, g.ShelfTop(1)+100)
	d.CurrentX, d.CurrentY = 92, 200

	f := shelf.Solve(g, settled, 2, d)
	fmt.Println("magnetic:", f.Magnetic, "insert:", f.InsertIndex)
	for _, e := range f.Layout {
		fmt.Printf("%s shelf=%d x=%.0f\n", e.ID, e.Shelf, e.X)
	}
	// Output:
	// magnetic: true insert: 1
	// A shelf=0 x=50
	// B shelf=0 x=256
	// C shelf=0 x=106
}

func ExampleReduce() {
	g := shelf.DefaultGeometry()
	s := shelf.NewState(g, []shelf.Item{
		{ID: "A", Kind: shelf.KindBook, Position: &shelf.Position{Shelf: 0, X: 50}},
	})

	s, _ = shelf.Reduce(g, s, shelf.PointerDown{ItemID: "A", X: 60, Y: 200})
	s, _ = shelf.Reduce(g, s, shelf.PointerMove{X: 60, Y: 730})
	fmt.Println("ghost:", s.Ghost)

	s, effects := shelf.Reduce(g, s, shelf.PointerUp{X: 60, Y: 730})
	for _, eff := range effects {
		if r, ok := eff.(shelf.Reorder); ok {
			fmt.Println(r.Kind, r.Placements)
		}
	}
	fmt.Println("shelves:", s.ShelfCount)
	// Output:
	// ghost: true
	// book [{A 2 50}]
	// shelves: 3
}
