// Package shelf implements the shelf layout and drag-reflow engine.
//
// Items (books and ornaments) sit on a variable number of horizontal
// shelves at free horizontal offsets. While an item is dragged the engine
// continuously recomputes where every item would land if the drag ended
// now: which shelf the pointer targets, whether the dragged item snaps
// magnetically next to an existing occupant, and which neighbours are
// pushed right to make room. Dropping below the last shelf creates a new
// one.
//
// # Architecture
//
// The package is pure and host-agnostic. Hosts (a terminal UI, an HTTP
// service, a replay harness, tests) translate their input devices into
// container-relative pointer coordinates and feed events through:
//
//	Sync   : []Item                            → Layout, shelf count
//	Solve  : Layout × shelf count × DragSession → Frame
//	Reduce : State × Event                      → State, []Effect
//
// [Solve] is the reflow solver. It never mutates its input and runs in time
// linear in the number of occupants of the target shelf, so it can be called
// on every pointer move.
//
// [Reduce] is the drag session state machine (idle → held → idle) and the
// commit pipeline. Effects describe what the host must do next: persist
// placements ([Reorder]), archive an item ([Archive]) or open it
// ([Activate]).
//
// [Engine] wraps State and Reduce for hosts that prefer callbacks over
// effect slices.
//
// # Coordinates
//
// All coordinates are in container pixels: x grows right, y grows down,
// and shelf i spans y ∈ [TopMargin + i·ShelfHeight, TopMargin + (i+1)·ShelfHeight).
// An item's x is its left edge within the shelf and is unbounded; items may
// overlap.
package shelf
