package debugger

import "strings"

// WatchKind selects one of the three watch lists Unreal maintains per frame.
type WatchKind int

const (
	WatchLocal WatchKind = iota
	WatchGlobal
	WatchUser
)

func (k WatchKind) String() string {
	switch k {
	case WatchLocal:
		return "local"
	case WatchGlobal:
		return "global"
	case WatchUser:
		return "user"
	default:
		return "unknown"
	}
}

// Fallbacks substituted when a watch name from the host cannot be parsed.
const (
	unknownName = "<unknown name>"
	unknownType = "<unknown type>"
)

// Watch is one node in a frame's watch arena. Children reference other
// nodes in the same arena by index; no node appears under two parents.
type Watch struct {
	Name     string
	Type     string
	Value    string
	Parent   int
	Children []int
}

// WatchList is an arena of watch nodes for one (frame, kind) pair. A
// non-empty list always holds a synthetic root at index 0 whose children
// are the top-level watches.
type WatchList struct {
	nodes []Watch
}

// ensureRoot makes index 0 valid before any real node is inserted.
func (l *WatchList) ensureRoot() {
	if len(l.nodes) == 0 {
		l.nodes = append(l.nodes, Watch{Name: "ROOT", Type: "N/A", Value: "N/A", Parent: -1})
	}
}

// Add inserts a watch at the index the interface assigned to it. A parent of
// -1 links the node under the synthetic root. The host name carries type and
// address info ("Name ( Type, Address )"); the address is discarded. The
// return value reports whether the name parsed; on failure the node is still
// inserted with placeholder name and type so the session continues.
func (l *WatchList) Add(index, parent int, fullName, value string) bool {
	l.ensureRoot()

	if index >= len(l.nodes) {
		filler := Watch{Name: unknownName, Type: unknownType, Parent: -1}
		for len(l.nodes) <= index {
			l.nodes = append(l.nodes, filler)
		}
	}

	name, typ, ok := splitWatchName(fullName)
	if !ok {
		name, typ = unknownName, unknownType
	}

	l.nodes[index] = Watch{Name: name, Type: typ, Value: value, Parent: parent}

	switch {
	case parent >= 1 && parent < len(l.nodes):
		l.nodes[parent].Children = append(l.nodes[parent].Children, index)
	case parent == -1:
		l.nodes[0].Children = append(l.nodes[0].Children, index)
	}
	return ok
}

// Clear empties the arena, dropping the root too. ensureRoot recreates it on
// the next insert.
func (l *WatchList) Clear() {
	l.nodes = nil
}

// Len returns the number of nodes, including the synthetic root.
func (l *WatchList) Len() int { return len(l.nodes) }

// Node returns the watch at the given arena index.
func (l *WatchList) Node(index int) *Watch { return &l.nodes[index] }

// Valid reports whether index names a node in the arena.
func (l *WatchList) Valid(index int) bool { return index >= 0 && index < len(l.nodes) }

// RootChildCount returns how many top-level watches exist.
func (l *WatchList) RootChildCount() int {
	if len(l.nodes) == 0 {
		return 0
	}
	return len(l.nodes[0].Children)
}

// FindChild returns the arena index of the named child of the root, or -1.
// User watches are looked up this way when servicing evaluate requests.
func (l *WatchList) FindChild(name string) int {
	if len(l.nodes) == 0 {
		return -1
	}
	for _, idx := range l.nodes[0].Children {
		if l.nodes[idx].Name == name {
			return idx
		}
	}
	return -1
}

// splitWatchName separates "Name ( Type, Address )" into its name and type
// portions.
func splitWatchName(full string) (name, typ string, ok bool) {
	open := strings.Index(full, "(")
	if open < 2 {
		return "", "", false
	}

	name = strings.TrimRight(full[:open], " ")

	rest := full[open+1:]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return "", "", false
	}
	typ = strings.TrimSpace(rest[:comma])
	return name, typ, true
}
