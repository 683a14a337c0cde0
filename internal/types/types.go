package types

// Record is one top-level production of a parsed input.
type Record struct {
	Token string `json:"token" yaml:"token"`
	Value any    `json:"value" yaml:"value"`
	// Begin and End are byte offsets, End exclusive.
	Begin  int `json:"begin" yaml:"begin"`
	End    int `json:"end" yaml:"end"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Node is a parse-tree node detached from the parser.
type Node struct {
	Token      string  `json:"token,omitempty" yaml:"token,omitempty"`
	Text       string  `json:"text" yaml:"text"`
	Begin      int     `json:"begin" yaml:"begin"`
	End        int     `json:"end" yaml:"end"`
	Production any     `json:"production,omitempty" yaml:"production,omitempty"`
	Children   []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Failure describes an input that could not be parsed.
type Failure struct {
	// Kind is parse, production or read.
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	// Pos is the byte offset of the failure, or -1 when unknown.
	Pos    int `json:"pos" yaml:"pos"`
	Line   int `json:"line,omitempty" yaml:"line,omitempty"`
	Column int `json:"column,omitempty" yaml:"column,omitempty"`
}

// Result is the outcome of parsing one input.
type Result struct {
	Filename string   `json:"filename" yaml:"filename"`
	Records  []Record `json:"records,omitempty" yaml:"records,omitempty"`
	Tree     *Node    `json:"tree,omitempty" yaml:"tree,omitempty"`
	Failure  *Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// OK reports whether the input parsed.
func (r *Result) OK() bool { return r.Failure == nil }
