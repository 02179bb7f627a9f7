package windows

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/vimwn/internal/platform"
)

// Registry holds the snapshot of windows taken on the last resync plus the
// projections derived from it. It is owned by a single event goroutine.
type Registry struct {
	// ListWorkspaces includes windows from every workspace in Buffers.
	ListWorkspaces bool

	workspace int
	buffers   []*platform.Window
	visible   []*platform.Window
	stacked   []*platform.Window // visible, front to back
	active    *platform.Window
	xLine     []*platform.Window
	yLine     []*platform.Window
	staging   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(listWorkspaces bool) *Registry {
	return &Registry{ListWorkspaces: listWorkspaces}
}

// Resync rebuilds the registry from the window system.
func (r *Registry) Resync(ws platform.WindowSystem) error {
	wins, err := ws.ListWindows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}
	stacking, err := ws.Stacking()
	if err != nil {
		return fmt.Errorf("failed to read stacking order: %w", err)
	}
	workspace, err := ws.ActiveWorkspace()
	if err != nil {
		return fmt.Errorf("failed to read active workspace: %w", err)
	}
	r.Load(wins, stacking, workspace)
	return nil
}

// Load replaces the snapshot with wins, given in discovery order, and the
// bottom-to-top stacking order. Staging is cleared.
func (r *Registry) Load(wins []platform.Window, stacking []platform.WindowID, workspace int) {
	r.workspace = workspace
	r.staging = false
	r.buffers = nil

	owned := make([]platform.Window, len(wins))
	copy(owned, wins)
	for i := range owned {
		w := &owned[i]
		if w.SkipTasklist {
			continue
		}
		if w.InWorkspace(workspace) || r.ListWorkspaces {
			r.buffers = append(r.buffers, w)
		}
	}

	r.rebuildVisible()
	r.stacked = orderByStacking(r.visible, stacking)
	r.active = nil
	if len(r.stacked) > 0 {
		r.active = r.stacked[0]
	}
	r.recomputeLines()
}

// Remove evicts a window from every set. Unknown ids are ignored.
func (r *Registry) Remove(id platform.WindowID) {
	if r.Find(id) == nil {
		return
	}
	r.buffers = without(r.buffers, id)
	r.visible = without(r.visible, id)
	r.stacked = without(r.stacked, id)
	if r.active != nil && r.active.ID == id {
		r.active = nil
		if len(r.stacked) > 0 {
			r.active = r.stacked[0]
		}
	}
	r.recomputeLines()
}

// Refresh re-derives the visible set and projections after windows were
// changed in place (minimized or moved). The active window is kept while it
// remains visible.
func (r *Registry) Refresh() {
	r.rebuildVisible()
	visible := make(map[platform.WindowID]bool, len(r.visible))
	for _, w := range r.visible {
		visible[w.ID] = true
	}
	stacked := r.stacked[:0]
	for _, w := range r.stacked {
		if visible[w.ID] {
			stacked = append(stacked, w)
		}
	}
	r.stacked = stacked
	if r.active != nil && !visible[r.active.ID] {
		r.active = nil
		if len(r.stacked) > 0 {
			r.active = r.stacked[0]
		}
	}
	r.recomputeLines()
}

// MarkStaged records that the active window should be realized on the next
// commit.
func (r *Registry) MarkStaged() {
	r.staging = true
}

// Staged reports whether a decision is waiting to be committed.
func (r *Registry) Staged() bool {
	return r.staging
}

// CommitIfStaged calls apply once with the active window when staging is
// set. Staging is cleared whatever apply returns.
func (r *Registry) CommitIfStaged(apply func(*platform.Window) error) error {
	if !r.staging {
		return nil
	}
	r.staging = false
	if r.active == nil {
		return nil
	}
	return apply(r.active)
}

// Buffers returns all tracked windows in discovery order.
func (r *Registry) Buffers() []*platform.Window { return r.buffers }

// Visible returns the windows shown on the active workspace.
func (r *Registry) Visible() []*platform.Window { return r.visible }

// Active returns the window navigation starts from, or nil.
func (r *Registry) Active() *platform.Window { return r.active }

// XLine returns visible windows ordered by x, then y.
func (r *Registry) XLine() []*platform.Window { return r.xLine }

// YLine returns visible windows ordered by y.
func (r *Registry) YLine() []*platform.Window { return r.yLine }

// Stacked returns visible windows front to back.
func (r *Registry) Stacked() []*platform.Window { return r.stacked }

// Workspace returns the active workspace of the last resync.
func (r *Registry) Workspace() int { return r.workspace }

// Find returns the buffer with the given id, or nil.
func (r *Registry) Find(id platform.WindowID) *platform.Window {
	for _, w := range r.buffers {
		if w.ID == id {
			return w
		}
	}
	return nil
}

// FindByName returns the buffers whose title matches name. A case-insensitive
// exact title match wins outright; otherwise every buffer whose title
// contains name is returned.
func (r *Registry) FindByName(name string) []*platform.Window {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	var partial []*platform.Window
	for _, w := range r.buffers {
		title := strings.ToLower(w.Title)
		if title == needle {
			return []*platform.Window{w}
		}
		if strings.Contains(title, needle) {
			partial = append(partial, w)
		}
	}
	return partial
}

func (r *Registry) setActive(w *platform.Window) {
	r.active = w
}

func (r *Registry) rebuildVisible() {
	r.visible = r.visible[:0]
	for _, w := range r.buffers {
		if w.InWorkspace(r.workspace) && !w.Minimized {
			r.visible = append(r.visible, w)
		}
	}
}

func (r *Registry) recomputeLines() {
	r.xLine = append([]*platform.Window(nil), r.visible...)
	sort.SliceStable(r.xLine, func(i, j int) bool {
		a, b := r.xLine[i].Bounds, r.xLine[j].Bounds
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	r.yLine = append([]*platform.Window(nil), r.visible...)
	sort.SliceStable(r.yLine, func(i, j int) bool {
		return r.yLine[i].Bounds.Y < r.yLine[j].Bounds.Y
	})
}

// orderByStacking returns wins front to back. Windows missing from the
// stacking list go last, in their original order.
func orderByStacking(wins []*platform.Window, stacking []platform.WindowID) []*platform.Window {
	pos := make(map[platform.WindowID]int, len(stacking))
	for i, id := range stacking {
		pos[id] = i
	}
	out := append([]*platform.Window(nil), wins...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := pos[out[i].ID]
		pj, jok := pos[out[j].ID]
		if iok != jok {
			return iok
		}
		return pi > pj
	})
	return out
}

func without(wins []*platform.Window, id platform.WindowID) []*platform.Window {
	out := wins[:0]
	for _, w := range wins {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}

func indexOf(wins []*platform.Window, target *platform.Window) int {
	for i, w := range wins {
		if w == target {
			return i
		}
	}
	return -1
}
