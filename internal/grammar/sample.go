package grammar

// Sample is the grammar written by "rxparse init": assignments of integer
// expressions, each with an optional trailing note.
//
//	x = 2 * (3 + 4)
//	y = -1 # negative
const Sample = `name: assignments
description: Assignments of integer expressions with optional notes.
extensions: [".calc", ".txt"]
definitions:
  ident:
    token: name
    expr:
      seq:
        - set: {include: [{range: a-z}, {range: A-Z}, {chars: _}]}
        - {class: '\w', min: 0}
  number:
    token: num
    action: int
    expr: {class: '\d', min: 1}
  operator:
    alt:
      - token: op
        expr: {chars: "+-"}
        rules:
          - {kind: prefix, priority: 30, when: leading}
          - {kind: infix, priority: 10}
      - token: op
        expr: {chars: "*/%"}
        rules:
          - {kind: infix, priority: 20}
      - token: op
        expr: {lit: "("}
        rules:
          - {kind: left}
      - token: op
        expr: {lit: ")"}
        rules:
          - {kind: right}
  note:
    seq:
      - {skipws: true}
      - {lit: "#"}
      - token: note
        action: defer
        skipws: false
        expr: {raw: '[^\r\n]*'}
root:
  seq:
    - {anchor: start}
    - token: assign
      action: object
      min: 0
      expr:
        seq:
          - {ref: ident}
          - {skipws: true}
          - {lit: "="}
          - token: value
            action: first
            expr:
              alt: [{ref: number}, {ref: operator}]
              min: 1
          - {ref: note, optional: true}
    - {skipws: true}
    - {anchor: end}
`

// Default returns the parsed sample grammar.
func Default() *Grammar {
	g, err := Parse([]byte(Sample))
	if err != nil {
		panic(err)
	}
	return g
}
