package inspect

import (
	"context"
	"sync"
)

// NodeKind identifies the variant of a tree node.
type NodeKind int

const (
	// KindRoot is the synthetic container for top-level watches and locals.
	KindRoot NodeKind = iota

	// KindLive is a node backed by a real evaluated value.
	KindLive

	// KindShowMore is a placeholder representing the unfetched tail of a
	// large enumerable.
	KindShowMore
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLive:
		return "live"
	case KindShowMore:
		return "showmore"
	default:
		return "unknown"
	}
}

// PathSeparator joins a parent path and a child name into a node path.
const PathSeparator = "/"

// showMoreName is the synthetic name of ShowMore placeholder nodes.
const showMoreName = "..."

// Node is one entry in the lazily loaded value tree. The path is
// immutable after construction and unique within one tree snapshot.
//
// A node does not deduplicate its own loads; concurrent loading is safe
// only through the owning TreeController, which guarantees at most one
// fetch in flight per node.
type Node struct {
	kind  NodeKind
	name  string
	path  string
	value Value // nil for Root and ShowMore

	mu          sync.Mutex
	children    []*Node
	expanded    bool
	fullyLoaded bool
	loadErr     error
}

// NewRootNode creates the synthetic root container. The root has an
// empty name and path, always reports children, and never fetches from
// a backend.
func NewRootNode() *Node {
	return &Node{kind: KindRoot}
}

// NewLiveNode wraps an evaluated runtime value as a child of parent.
func NewLiveNode(parent *Node, value Value) *Node {
	n := &Node{
		kind:  KindLive,
		name:  value.Name(),
		value: value,
	}
	n.path = joinPath(parent.path, n.name)
	return n
}

// NewShowMoreNode creates a placeholder node signalling that parent has
// more children than are currently loaded. It is produced by the view
// layer when a paged fetch is truncated, consumed as an affordance, and
// never auto-expanded by the controller.
func NewShowMoreNode(parent *Node) *Node {
	return &Node{
		kind: KindShowMore,
		name: showMoreName,
		path: joinPath(parent.path, showMoreName),
	}
}

func joinPath(parentPath, name string) string {
	return parentPath + PathSeparator + name
}

// Kind returns the node variant.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the node's display name. The root's name is empty.
func (n *Node) Name() string { return n.name }

// Path returns the node's unique tree path.
func (n *Node) Path() string { return n.path }

// Children returns a snapshot of the loaded children in sibling order.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Node{}, n.children...)
}

// ChildCount returns the number of currently loaded children.
func (n *Node) ChildCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children)
}

// IsExpanded returns true if the node is marked expanded.
func (n *Node) IsExpanded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.expanded
}

// setExpanded marks the node expanded or collapsed.
func (n *Node) setExpanded(expanded bool) {
	n.mu.Lock()
	n.expanded = expanded
	n.mu.Unlock()
}

// ChildrenFullyLoaded returns true if no further backend fetch will be
// issued for this node until it is explicitly reset.
func (n *Node) ChildrenFullyLoaded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fullyLoaded
}

// LoadErr returns the error recorded by the most recent failed child
// fetch, or nil.
func (n *Node) LoadErr() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loadErr
}

// Capability projections. These delegate to the backing value and never
// trigger I/O. The root always reports children; the ShowMore
// placeholder reports enumerable and is otherwise inert.

// HasChildren returns true if the node has child values.
func (n *Node) HasChildren() bool {
	switch n.kind {
	case KindRoot:
		return true
	case KindLive:
		return n.value.Flags().Has(FlagHasChildren)
	default:
		return false
	}
}

// IsEnumerable returns true if the node's children should be paged.
func (n *Node) IsEnumerable() bool {
	switch n.kind {
	case KindShowMore:
		return true
	case KindLive:
		return n.value.Flags().Has(FlagEnumerable)
	default:
		return false
	}
}

// IsEvaluating returns true if the backend is still computing the value.
func (n *Node) IsEvaluating() bool { return n.hasFlag(FlagEvaluating) }

// IsError returns true if the value represents an evaluation error.
func (n *Node) IsError() bool { return n.hasFlag(FlagError) }

// IsNull returns true if the value is null.
func (n *Node) IsNull() bool { return n.hasFlag(FlagNull) }

// IsPrimitive returns true if the value is a primitive.
func (n *Node) IsPrimitive() bool { return n.hasFlag(FlagPrimitive) }

// IsReadOnly returns true if the value cannot be modified.
func (n *Node) IsReadOnly() bool { return n.hasFlag(FlagReadOnly) }

// CanRefresh returns true if the value can be re-evaluated on demand.
func (n *Node) CanRefresh() bool { return n.hasFlag(FlagCanRefresh) }

func (n *Node) hasFlag(flag ValueFlags) bool {
	return n.kind == KindLive && n.value.Flags().Has(flag)
}

// Flags returns the full capability flag set, or zero for nodes without
// a backing value.
func (n *Node) Flags() ValueFlags {
	if n.kind != KindLive {
		return 0
	}
	return n.value.Flags()
}

// TypeName returns the backing value's type name, or empty.
func (n *Node) TypeName() string {
	if n.kind != KindLive {
		return ""
	}
	return n.value.TypeName()
}

// DisplayValue returns the backing value's rendered text, or empty.
func (n *Node) DisplayValue() string {
	if n.kind != KindLive {
		return ""
	}
	return n.value.DisplayValue()
}

// LoadChildren fetches all remaining children from the backing value,
// appends them in order, and marks the node fully loaded. It returns the
// number of newly appended children. Calling it on a fully loaded node
// is an idempotent no-op returning 0 without a backend call. Nodes
// without a backing value (Root, ShowMore) never fetch.
func (n *Node) LoadChildren(ctx context.Context) (int, error) {
	if n.kind != KindLive {
		return 0, nil
	}

	n.mu.Lock()
	if n.fullyLoaded {
		n.mu.Unlock()
		return 0, nil
	}
	loaded := len(n.children)
	n.mu.Unlock()

	values, err := n.value.Children(ctx)
	if err != nil {
		n.recordLoadErr(err)
		return 0, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	appended := 0
	if len(values) > loaded {
		for _, v := range values[loaded:] {
			n.children = append(n.children, NewLiveNode(n, v))
			appended++
		}
	}
	n.fullyLoaded = true
	n.loadErr = nil
	return appended, nil
}

// LoadChildrenPage fetches at most count additional children starting
// after the current child sequence length. A short result marks the node
// fully loaded. It returns the number actually appended (0 if already
// fully loaded). A count of zero or less falls back to a full load.
func (n *Node) LoadChildrenPage(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return n.LoadChildren(ctx)
	}
	if n.kind != KindLive {
		return 0, nil
	}

	n.mu.Lock()
	if n.fullyLoaded {
		n.mu.Unlock()
		return 0, nil
	}
	start := len(n.children)
	n.mu.Unlock()

	values, err := n.value.ChildRange(ctx, start, count)
	if err != nil {
		n.recordLoadErr(err)
		return 0, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, v := range values {
		n.children = append(n.children, NewLiveNode(n, v))
	}
	if len(values) < count {
		n.fullyLoaded = true
	}
	n.loadErr = nil
	return len(values), nil
}

// ResetChildren discards loaded children and clears the fully-loaded
// mark so the next fetch consults the backend again. Evaluation watches
// for the discarded subtree must be released by the controller before
// the reset (see TreeController.ResetNode).
func (n *Node) ResetChildren() {
	n.mu.Lock()
	n.children = nil
	n.fullyLoaded = false
	n.loadErr = nil
	n.mu.Unlock()
}

// appendChild appends a child built externally. Used by the controller
// for the root's bulk add; live nodes gain children only via loads.
func (n *Node) appendChild(child *Node) {
	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()
}

// observeValue subscribes to the backing value's change notification,
// returning the subscription cancel func. Nodes without a backing value
// return nil.
func (n *Node) observeValue(fn func()) (cancel func()) {
	if n.value == nil {
		return nil
	}
	return n.value.OnChanged(fn)
}

func (n *Node) recordLoadErr(err error) {
	n.mu.Lock()
	n.loadErr = err
	n.mu.Unlock()
}
