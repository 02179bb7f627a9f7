package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// StickyWorkspace marks a window that is present on every workspace.
const StickyWorkspace = -1

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Decoration describes the frame a window manager draws around a client.
// Width and Height are the offsets of the client area inside the frame
// (left and top frame extents).
type Decoration struct {
	HasFrame bool
	Width    int
	Height   int
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID           WindowID
	PID          int
	AppID        string
	Title        string
	Bounds       Rect
	Workspace    int
	Minimized    bool
	MaximizedH   bool
	MaximizedV   bool
	SkipTasklist bool
	Frame        Decoration
}

// Maximized reports whether the window is maximized along any dimension.
func (w *Window) Maximized() bool {
	return w.MaximizedH || w.MaximizedV
}

// InWorkspace reports whether the window is shown on the given workspace.
func (w *Window) InWorkspace(workspace int) bool {
	return w.Workspace == StickyWorkspace || w.Workspace == workspace
}

// WindowSystem abstracts the window-system queries and mutations the
// navigator needs. Implementations must be safe to call from the single
// event-processing goroutine.
type WindowSystem interface {
	// ListWindows returns managed windows in discovery (client list) order.
	ListWindows() ([]Window, error)
	ActiveWorkspace() (int, error)
	// Stacking returns window IDs ordered bottom to top.
	Stacking() ([]WindowID, error)

	SetGeometry(id WindowID, bounds Rect) error
	Activate(id WindowID, timestamp uint32) error
	Close(id WindowID, timestamp uint32) error
	Minimize(id WindowID) error
	Maximize(id WindowID) error
	Unmaximize(id WindowID) error
	UnmaximizeHorizontally(id WindowID) error
	UnmaximizeVertically(id WindowID) error

	// WorkArea returns the usable area of the monitor holding the window.
	WorkArea(id WindowID) (Rect, error)
	Decorations(id WindowID) (decorated bool, flags uint, err error)
	SetDecorations(id WindowID, flags uint) error
}
