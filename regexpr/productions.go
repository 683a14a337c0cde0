package regexpr

// Production is a production object tagged with the token that made it.
type Production struct {
	TokenID string
	Value   any
	// Begin and End are the byte span of the producing node. Both are zero
	// for values added with Add.
	Begin, End int
}

// Productions collects production objects in the order they were produced,
// grouped by token id.
type Productions struct {
	list    []Production
	byToken map[string][]any
}

func NewProductions() *Productions {
	return &Productions{byToken: make(map[string][]any)}
}

// Add appends a production.
func (p *Productions) Add(tokenID string, v any) {
	p.add(Production{TokenID: tokenID, Value: v})
}

func (p *Productions) add(prod Production) {
	p.list = append(p.list, prod)
	p.byToken[prod.TokenID] = append(p.byToken[prod.TokenID], prod.Value)
}

func (p *Productions) addNode(n *Node) {
	p.add(Production{TokenID: n.TokenID(), Value: n.Production, Begin: n.Begin, End: n.End})
}

// All returns every production in production order.
func (p *Productions) All() []Production {
	if p == nil {
		return nil
	}
	return p.list
}

func (p *Productions) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// Values returns the productions of a token, deferred objects included as
// they are.
func (p *Productions) Values(tokenID string) []any {
	if p == nil || tokenID == "" {
		return nil
	}
	return p.byToken[tokenID]
}

// Get returns the idx-th production of a token, or nil.
func (p *Productions) Get(tokenID string, idx int) any {
	vs := p.Values(tokenID)
	if idx < 0 || idx >= len(vs) {
		return nil
	}
	return vs[idx]
}

// TokenIDs returns the ids of the tokens with productions, in order of
// first production.
func (p *Productions) TokenIDs() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool, len(p.byToken))
	var ids []string
	for _, prod := range p.list {
		if !seen[prod.TokenID] {
			seen[prod.TokenID] = true
			ids = append(ids, prod.TokenID)
		}
	}
	return ids
}

// ValuesOf returns the productions of a token that are T. Nil productions
// are skipped; resolved deferred objects contribute their object.
func ValuesOf[T any](p *Productions, tokenID string) []T {
	var out []T
	for _, v := range p.Values(tokenID) {
		if v == nil {
			continue
		}
		if t, ok := v.(T); ok {
			out = append(out, t)
			continue
		}
		if d, ok := v.(*Deferred); ok && d.HasData() {
			if t, ok := d.Object().(T); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// FirstOf returns the first production of a token that is a T.
func FirstOf[T any](p *Productions, tokenID string) (T, bool) {
	vs := ValuesOf[T](p, tokenID)
	if len(vs) == 0 {
		var zero T
		return zero, false
	}
	return vs[0], true
}
