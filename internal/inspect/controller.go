package inspect

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/varwatch/internal/logging"
)

// DefaultPageSize is the number of children fetched per page when
// expanding an enumerable node.
const DefaultPageSize = 20

// DefaultMaxLoadBatch caps how many children a single paged fetch may
// request.
const DefaultMaxLoadBatch = 200

// DebugSession reports debugger connectivity. It is queried, never
// mutated, to decide whether live evaluation is currently meaningful.
type DebugSession interface {
	// IsConnected returns true if a debug adapter is connected.
	IsConnected() bool

	// IsPaused returns true if the debuggee is stopped.
	IsPaused() bool
}

// Handlers contains observer callbacks for tree notifications. All
// callbacks fire synchronously on the goroutine that triggered them.
type Handlers struct {
	// OnChildrenLoaded is called when a node gained newly loaded
	// children, including the root after a clear or bulk add.
	OnChildrenLoaded func(node *Node)

	// OnNodeExpanded is called after an expand request completes,
	// whether or not any children loaded.
	OnNodeExpanded func(node *Node)

	// OnEvaluationCompleted is called when a watched node's pending
	// evaluation finishes. It fires at most once per registration.
	OnEvaluationCompleted func(node *Node)

	// OnLoadFailed is called when a child fetch fails. The error is
	// also recorded on the node as LoadErr.
	OnLoadFailed func(node *Node, err error)
}

// pendingFetch tracks one in-flight child fetch for a node. Callers
// joining the fetch register as waiters; the underlying fetch is
// cancelled only when the last remaining waiter's context is done.
type pendingFetch struct {
	done   chan struct{}
	loaded int
	err    error

	mu      sync.Mutex
	waiters int
	cancel  context.CancelFunc
}

func (p *pendingFetch) addWaiter() {
	p.mu.Lock()
	p.waiters++
	p.mu.Unlock()
}

// abandonWaiter removes a cancelled waiter and cancels the underlying
// fetch if it was the last one remaining.
func (p *pendingFetch) abandonWaiter() {
	p.mu.Lock()
	p.waiters--
	last := p.waiters == 0
	p.mu.Unlock()

	if last {
		p.cancel()
	}
}

// TreeController owns the value tree: it manages lazy, paged,
// cancellable fetches of child values, deduplicates concurrent fetch
// requests per node, tracks evaluation watches, and fans out lifecycle
// notifications to observers.
//
// TreeController is safe for concurrent use.
type TreeController struct {
	mu        sync.Mutex
	root      *Node
	pending   map[*Node]*pendingFetch
	watches   map[*Node]func()
	observers map[string]Handlers
	frame     any

	// Debugger session facade, lazily constructed on first use.
	session   DebugSession
	sessionFn func() DebugSession

	pageSize int
	maxBatch int
	logger   *logging.Logger
}

// Option configures a TreeController.
type Option func(*TreeController)

// WithPageSize sets the page size used when expanding enumerable nodes.
// Values of zero or less keep the default.
func WithPageSize(size int) Option {
	return func(c *TreeController) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMaxLoadBatch caps the child count a single paged fetch may
// request. Values of zero or less keep the default.
func WithMaxLoadBatch(n int) Option {
	return func(c *TreeController) {
		if n > 0 {
			c.maxBatch = n
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *TreeController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionFactory sets the factory used to lazily construct the
// debugger session facade on first query.
func WithSessionFactory(fn func() DebugSession) Option {
	return func(c *TreeController) {
		c.sessionFn = fn
	}
}

// NewTreeController creates a tree controller with a fresh empty root.
func NewTreeController(opts ...Option) *TreeController {
	c := &TreeController{
		root:      NewRootNode(),
		pending:   make(map[*Node]*pendingFetch),
		watches:   make(map[*Node]func()),
		observers: make(map[string]Handlers),
		pageSize:  DefaultPageSize,
		maxBatch:  DefaultMaxLoadBatch,
		logger:    logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Root returns the current root node.
func (c *TreeController) Root() *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// PageSize returns the page size used for enumerable expansion.
func (c *TreeController) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// SetPageSize updates the page size used for enumerable expansion.
// Values of zero or less are ignored.
func (c *TreeController) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	c.mu.Lock()
	c.pageSize = size
	c.mu.Unlock()
}

// Subscribe registers observer handlers and returns a registration ID
// for Unsubscribe.
func (c *TreeController) Subscribe(h Handlers) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.observers[id] = h
	c.mu.Unlock()
	return id
}

// Unsubscribe removes a previously registered observer.
func (c *TreeController) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.observers, id)
	c.mu.Unlock()
}

// SelectFrame records the currently selected stack frame. The frame is
// opaque to the controller and only carried for the view layer.
func (c *TreeController) SelectFrame(frame any) {
	c.mu.Lock()
	c.frame = frame
	c.mu.Unlock()
}

// SelectedFrame returns the currently selected stack frame, or nil.
func (c *TreeController) SelectedFrame() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// CanQueryDebugger returns true if a connected, paused debugger is
// available for live evaluation.
func (c *TreeController) CanQueryDebugger() bool {
	s := c.debugSession()
	return s != nil && s.IsConnected() && s.IsPaused()
}

func (c *TreeController) debugSession() DebugSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil && c.sessionFn != nil {
		c.session = c.sessionFn()
	}
	return c.session
}

// ClearValues discards the current root, creates a fresh empty one, and
// raises a children-loaded notification for it. Evaluation watches are
// untouched; use ClearAll for full teardown.
func (c *TreeController) ClearValues() {
	c.mu.Lock()
	c.root = NewRootNode()
	root := c.root
	c.mu.Unlock()

	c.notifyChildrenLoaded(root)
}

// ClearAll releases every outstanding evaluation watch, then clears the
// tree as ClearValues does.
func (c *TreeController) ClearAll() {
	c.mu.Lock()
	watches := c.watches
	c.watches = make(map[*Node]func())
	c.mu.Unlock()

	for _, cancel := range watches {
		if cancel != nil {
			cancel()
		}
	}

	c.ClearValues()
}

// AddValues wraps each value in a live node, appends them to the root in
// order, registers evaluation watches for values still being computed,
// and raises a children-loaded notification for the root. The sequence
// is enumerated exactly once.
func (c *TreeController) AddValues(values iter.Seq[Value]) {
	root := c.ensureRoot()

	var added []*Node
	for v := range values {
		node := NewLiveNode(root, v)
		root.appendChild(node)
		added = append(added, node)
	}

	for _, node := range added {
		c.registerWatch(node)
	}

	c.notifyChildrenLoaded(root)
}

func (c *TreeController) ensureRoot() *Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.root == nil {
		c.root = NewRootNode()
	}
	return c.root
}

// ExpandNode marks the node expanded and loads its children: an initial
// page for enumerable nodes, everything otherwise. A children-loaded
// notification is raised only if at least one child was newly loaded; a
// node-expanded notification is always raised afterward. Expanding an
// already-expanded node is a no-op. Fetch errors are not returned to the
// caller; they surface through the load-failed notification.
func (c *TreeController) ExpandNode(ctx context.Context, node *Node) {
	if node == nil || node.IsExpanded() {
		return
	}
	node.setExpanded(true)

	count := 0
	if node.IsEnumerable() {
		count = c.PageSize()
	}

	loaded, err := c.FetchChildren(ctx, node, count)
	if err != nil {
		c.logger.Debug("expand fetch failed: node=%s err=%v", node.Path(), err)
		c.notifyLoadFailed(node, err)
	}

	if loaded > 0 {
		c.notifyChildrenLoaded(node)
	}
	c.notifyNodeExpanded(node)
}

// CollapseNode marks the node not expanded. Loaded children are
// retained so re-expansion does not re-fetch them.
func (c *TreeController) CollapseNode(node *Node) {
	if node == nil {
		return
	}
	node.setExpanded(false)
}

// FetchChildren loads children for a node, paged when count > 0 and full
// otherwise, and returns the number newly appended. It is the
// deduplication point: if a fetch for the node is already in flight the
// caller joins it and observes the same result instead of issuing a
// second backend call. The dedup entry is released unconditionally when
// the fetch settles, and every newly appended child still evaluating is
// registered for evaluation-completion tracking.
func (c *TreeController) FetchChildren(ctx context.Context, node *Node, count int) (int, error) {
	if node == nil || node.Kind() != KindLive || node.ChildrenFullyLoaded() {
		return 0, nil
	}

	c.mu.Lock()
	if count > c.maxBatch {
		count = c.maxBatch
	}
	if pf, ok := c.pending[node]; ok {
		c.mu.Unlock()
		return c.awaitFetch(ctx, pf)
	}

	fetchCtx, cancel := context.WithCancel(context.Background())
	pf := &pendingFetch{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	c.pending[node] = pf
	c.mu.Unlock()

	go c.runFetch(fetchCtx, node, count, pf)

	return c.awaitFetch(ctx, pf)
}

// runFetch performs the backend fetch on a worker goroutine and settles
// the pending entry.
func (c *TreeController) runFetch(ctx context.Context, node *Node, count int, pf *pendingFetch) {
	var loaded int
	var err error
	if count > 0 {
		loaded, err = node.LoadChildrenPage(ctx, count)
	} else {
		loaded, err = node.LoadChildren(ctx)
	}

	// Release the dedup entry unconditionally so a later fetch for
	// this node is never permanently blocked.
	c.mu.Lock()
	delete(c.pending, node)
	c.mu.Unlock()

	if err == nil && loaded > 0 {
		children := node.Children()
		for _, child := range children[len(children)-loaded:] {
			c.registerWatch(child)
		}
	}
	if err != nil {
		c.logger.Debug("child fetch failed: node=%s err=%v", node.Path(), err)
	}

	pf.loaded = loaded
	pf.err = err
	close(pf.done)
	pf.cancel()
}

// awaitFetch blocks until the shared fetch settles or the caller's
// context is done. A cancelled caller abandons its waiter slot without
// disturbing other waiters; only the last abandoning waiter cancels the
// underlying fetch.
func (c *TreeController) awaitFetch(ctx context.Context, pf *pendingFetch) (int, error) {
	pf.addWaiter()

	select {
	case <-pf.done:
		return pf.loaded, pf.err
	case <-ctx.Done():
		pf.abandonWaiter()
		return 0, ctx.Err()
	}
}

// ResetNode releases evaluation watches for the node's loaded subtree
// and discards its children so the next fetch consults the backend
// again.
func (c *TreeController) ResetNode(node *Node) {
	if node == nil {
		return
	}
	for _, child := range node.Children() {
		c.releaseSubtree(child)
	}
	node.ResetChildren()
}

func (c *TreeController) releaseSubtree(node *Node) {
	c.mu.Lock()
	cancel, ok := c.watches[node]
	if ok {
		delete(c.watches, node)
	}
	c.mu.Unlock()

	if ok && cancel != nil {
		cancel()
	}

	for _, child := range node.Children() {
		c.releaseSubtree(child)
	}
}

// registerWatch subscribes to a still-evaluating node's value-changed
// notification. When the notification fires the watch is unregistered
// first, so each registration raises at most one evaluation-completed
// notification.
func (c *TreeController) registerWatch(node *Node) {
	if node == nil || !node.IsEvaluating() {
		return
	}

	c.mu.Lock()
	if _, ok := c.watches[node]; ok {
		c.mu.Unlock()
		return
	}
	// Reserve the slot before subscribing so a completion firing during
	// subscription is handled, not double-registered.
	c.watches[node] = func() {}
	c.mu.Unlock()

	cancel := node.observeValue(func() {
		c.evaluationCompleted(node)
	})

	c.mu.Lock()
	if _, ok := c.watches[node]; ok {
		c.watches[node] = cancel
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// The completion fired while we were subscribing; tear down the now
	// dangling subscription.
	if cancel != nil {
		cancel()
	}
}

func (c *TreeController) evaluationCompleted(node *Node) {
	c.mu.Lock()
	cancel, ok := c.watches[node]
	if ok {
		delete(c.watches, node)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	if cancel != nil {
		cancel()
	}

	c.notifyEvaluationCompleted(node)
}

// WatchCount returns the number of outstanding evaluation watches.
func (c *TreeController) WatchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watches)
}

// Notification fan-out. Observers are snapshotted so handlers may
// subscribe or unsubscribe reentrantly.

func (c *TreeController) snapshotObservers() []Handlers {
	c.mu.Lock()
	defer c.mu.Unlock()
	observers := make([]Handlers, 0, len(c.observers))
	for _, h := range c.observers {
		observers = append(observers, h)
	}
	return observers
}

func (c *TreeController) notifyChildrenLoaded(node *Node) {
	for _, h := range c.snapshotObservers() {
		if h.OnChildrenLoaded != nil {
			h.OnChildrenLoaded(node)
		}
	}
}

func (c *TreeController) notifyNodeExpanded(node *Node) {
	for _, h := range c.snapshotObservers() {
		if h.OnNodeExpanded != nil {
			h.OnNodeExpanded(node)
		}
	}
}

func (c *TreeController) notifyEvaluationCompleted(node *Node) {
	for _, h := range c.snapshotObservers() {
		if h.OnEvaluationCompleted != nil {
			h.OnEvaluationCompleted(node)
		}
	}
}

func (c *TreeController) notifyLoadFailed(node *Node, err error) {
	for _, h := range c.snapshotObservers() {
		if h.OnLoadFailed != nil {
			h.OnLoadFailed(node, err)
		}
	}
}
