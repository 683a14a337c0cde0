package regexpr

import "fmt"

// Deferred is a production whose construction waits for context that only
// an enclosing rule has. It keeps the raw production of its node until it is
// resolved.
type Deferred struct {
	TokenID    string
	Value      string
	Begin, End int
	// Raw is the production built by the deferred rule's actions.
	Raw any

	obj     any
	hasData bool
	resolve func(d *Deferred) (any, error)
}

// HasData reports whether the object has been constructed.
func (d *Deferred) HasData() bool { return d.hasData }

// Object returns the constructed object, or nil before resolution.
func (d *Deferred) Object() any { return d.obj }

// Bind sets the function that constructs the object. A later Bind
// overrides an earlier one; the innermost enclosing rule binds first.
func (d *Deferred) Bind(resolve func(d *Deferred) (any, error)) {
	if resolve != nil {
		d.resolve = resolve
	}
}

// Resolve constructs the object, once. It is a ProductionError to resolve
// an object that no rule classified.
func (d *Deferred) Resolve() (any, error) {
	if d.hasData {
		return d.obj, nil
	}
	if d.resolve == nil {
		return nil, &ProductionError{TokenID: d.TokenID, Msg: fmt.Sprintf("deferred object %q was never classified", d.Value)}
	}
	obj, err := d.resolve(d)
	if err != nil {
		return nil, err
	}
	d.obj = obj
	d.hasData = true
	return obj, nil
}

func (d *Deferred) String() string {
	if d.hasData {
		return fmt.Sprintf("Deferred(%s: %v)", d.TokenID, d.obj)
	}
	return fmt.Sprintf("Deferred(%s: pending)", d.TokenID)
}

// Context carries the state of one production call: the deferred objects
// created while producing. A Context must not be shared by concurrent
// calls.
type Context struct {
	pending []*Deferred
}

// NewContext returns an empty production context.
func NewContext() *Context { return &Context{} }

// Defer registers a deferred production for n.
func (c *Context) Defer(n *Node, raw any, resolve func(d *Deferred) (any, error)) *Deferred {
	d := &Deferred{
		TokenID: n.TokenID(),
		Value:   n.Value,
		Begin:   n.Begin,
		End:     n.End,
		Raw:     raw,
		resolve: resolve,
	}
	c.pending = append(c.pending, d)
	return d
}

// Pending returns the deferred objects registered since the last Drain.
func (c *Context) Pending() []*Deferred { return c.pending }

// Drain resolves every pending object in creation order and clears the
// pending list. It stops at the first error.
func (c *Context) Drain() error {
	pending := c.pending
	c.pending = nil
	for _, d := range pending {
		if _, err := d.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

// Unwrap returns the object of a resolved deferred production, and v itself
// otherwise.
func Unwrap(v any) any {
	if d, ok := v.(*Deferred); ok && d.HasData() {
		return d.Object()
	}
	return v
}
