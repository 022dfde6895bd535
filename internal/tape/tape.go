// Package tape implements the paged, infinite two-way tape shared by
// nondeterministic branches of the simulator.
//
// A Tape owns a doubly linked list of fixed-size TapePages and a reference
// count. Branches that fork from a common ancestor share the same Tape
// handle until one of them needs to mutate it, at which point it privatizes
// (deep-copies) its own copy, classic copy-on-write. A single small counter
// localizes a sharing invariant that would otherwise require reasoning about
// aliasing across the whole branch tree.
package tape

// Symbol is a single tape cell value.
type Symbol = byte

// BLANK is the reserved symbol denoting an empty cell. Pages are
// initialized to BLANK and a write of BLANK never allocates a page.
const BLANK Symbol = 0

// PageSize is the capacity of a TapePage, in cells. 512 keeps a page within
// a couple of cache lines' worth of bookkeeping while still covering most
// real machine runs without a page fault. It is a package variable rather
// than a constant solely so the CLI's --page-size flag can override it for
// testing; callers that don't touch the flag get the default unchanged.
// Changing it only affects pages allocated afterward; never call it once a
// run is in flight.
var PageSize = 512

// Move is a head motion directive.
type Move uint8

const (
	Left Move = iota
	Stay
	Right
)

// TapePage is a fixed-size block of tape cells and the unit of CoW sharing.
// Cells default to BLANK; a freshly made slice zero-values to 0, which is
// BLANK by construction.
type TapePage struct {
	cells []Symbol
	prev  *TapePage
	next  *TapePage
}

// newPage allocates a page, sized to the current PageSize, with all cells
// BLANK.
func newPage() *TapePage {
	return &TapePage{cells: make([]Symbol, PageSize)}
}

// clonePage returns a byte-for-byte copy of src, detached from src's
// neighbor links; the caller relinks it into the new page chain.
func clonePage(src *TapePage) *TapePage {
	cells := make([]Symbol, len(src.cells))
	copy(cells, src.cells)
	return &TapePage{cells: cells}
}

func (p *TapePage) read(pos int) Symbol {
	return p.cells[pos]
}

func (p *TapePage) write(pos int, c Symbol) {
	p.cells[pos] = c
}

// Tape is a reference-counted handle owning a doubly linked list of pages.
// All branches holding a handle observe identical cell contents; a tape with
// refCount == 1 may be mutated in place, one with refCount > 1 must be
// privatized first (see MakePrivate).
type Tape struct {
	first    *TapePage
	refCount int
}

// NewEmpty returns a fresh Tape with no pages and refCount 1.
func NewEmpty() *Tape {
	return &Tape{refCount: 1}
}

// Share increments t's reference count and returns the same handle, aliasing
// the same page list. Callers fork a branch by calling Share on the
// parent's tape rather than copying it.
func Share(t *Tape) *Tape {
	t.refCount++
	return t
}

// Release decrements t's reference count, freeing its page list once it
// reaches zero. A Tape must not be used again after its last Release.
func Release(t *Tape) {
	t.refCount--
	if t.refCount == 0 {
		t.first = nil
	}
}

// RefCount reports the current number of branches sharing t.
func (t *Tape) RefCount() int {
	return t.refCount
}

// Shared reports whether t must be privatized before a mutation.
func (t *Tape) Shared() bool {
	return t.refCount > 1
}

// pageAt walks the page list and returns the page at the given zero-based
// index, counting from t.first.
func pageAt(t *Tape, n int) *TapePage {
	p := t.first
	for i := 0; i < n && p != nil; i++ {
		p = p.next
	}
	return p
}

// indexOf returns the zero-based position of page within t's list, or -1 if
// page does not belong to t (including page == nil).
func indexOf(t *Tape, page *TapePage) int {
	i := 0
	for p := t.first; p != nil; p = p.next {
		if p == page {
			return i
		}
		i++
	}
	return -1
}

// MakePrivate deep-copies tape's page list into a fresh Tape with
// refCount == 1, releasing the caller's hold on the shared tape. It returns
// the new tape and the page within it that corresponds, by traversal
// position, to headPage in the old list (nil if headPage was nil).
//
// Precondition: tape.RefCount() > 1. Callers must check Shared() before
// calling; MakePrivate does not check it itself; the caller already holds
// the position it needs recomputed (headPage), which is why the index is
// looked up before any pages are copied.
func MakePrivate(t *Tape, headPage *TapePage) (*Tape, *TapePage) {
	headIdx := indexOf(t, headPage)

	fresh := &Tape{refCount: 1}
	var tail *TapePage
	var newHead *TapePage
	i := 0
	for p := t.first; p != nil; p = p.next {
		np := clonePage(p)
		if tail == nil {
			fresh.first = np
		} else {
			tail.next = np
			np.prev = tail
		}
		tail = np
		if i == headIdx {
			newHead = np
		}
		i++
	}

	Release(t)
	return fresh, newHead
}

// Read returns the symbol at headPage/headPos, or BLANK if headPage is nil
// (no page has ever been allocated in that direction).
func Read(headPage *TapePage, headPos int) Symbol {
	if headPage == nil {
		return BLANK
	}
	return headPage.read(headPos)
}

// Write enforces the CoW rule and implicit first-page allocation described
// in the tape model: a write of a non-BLANK symbol with no head page
// allocates one; a write that would not change the current cell's value is
// a no-op (no privatization, no allocation) regardless of sharing.
//
// The caller passes the branch's current tape, head page and head position;
// Write returns the (possibly new) tape and head page to store back on the
// branch, plus whether an allocation occurred.
func Write(t *Tape, headPage *TapePage, headPos int, c Symbol) (*Tape, *TapePage, bool) {
	current := Read(headPage, headPos)
	if current == c {
		return t, headPage, false
	}

	if headPage == nil {
		if c == BLANK {
			return t, headPage, false
		}
		if t.Shared() {
			t, headPage = MakePrivate(t, headPage)
		}
		p := newPage()
		t.first = p
		p.write(headPos, c)
		return t, p, true
	}

	if t.Shared() {
		t, headPage = MakePrivate(t, headPage)
	}
	headPage.write(headPos, c)
	return t, headPage, false
}

// MoveHead applies m to headPage/headPos within t, allocating a neighbor
// page on a boundary fault. Moving with no allocated page (headPage == nil)
// is a no-op: the tape is logically blank in all directions. Stay is always
// a no-op.
//
// Boundary-fault rule (guarded form, per the design notes): an L-fault only
// allocates a new first page when headPos == 0 AND headPage.prev == nil;
// the ungated form (allocating whenever prev == nil regardless of headPos)
// over-allocates and is not reproduced here.
func MoveHead(t *Tape, headPage *TapePage, headPos int, m Move) (*TapePage, int) {
	if headPage == nil {
		return nil, headPos
	}

	switch m {
	case Stay:
		return headPage, headPos
	case Left:
		if headPos > 0 {
			return headPage, headPos - 1
		}
		if headPage.prev != nil {
			return headPage.prev, PageSize - 1
		}
		np := newPage()
		np.next = headPage
		headPage.prev = np
		if t.first == headPage {
			t.first = np
		}
		return np, PageSize - 1
	case Right:
		if headPos < PageSize-1 {
			return headPage, headPos + 1
		}
		if headPage.next != nil {
			return headPage.next, 0
		}
		np := newPage()
		np.prev = headPage
		headPage.next = np
		return np, 0
	default:
		return headPage, headPos
	}
}

// FirstPage returns tape's first page, or nil if no page has been
// allocated. Used by the driver to rebind a fresh root branch's head after
// writing the input string.
func FirstPage(t *Tape) *TapePage {
	return t.first
}

// PagesAt is a small helper for callers (e.g. tests) that need the page at
// a given zero-based index without reaching into Tape internals directly.
func PagesAt(t *Tape, n int) *TapePage {
	return pageAt(t, n)
}
