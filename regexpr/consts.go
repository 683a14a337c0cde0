package regexpr

// Frequently used classes and anchors. Each call returns a fresh expression.

// CharWord is equivalent to [\w].
func CharWord() *CharClass { return RawChars(`\w`) }

// Word is equivalent to [\w]*.
func Word() Expr { return ZeroOrMore(CharWord()) }

// CharDigit is equivalent to [\d].
func CharDigit() *CharClass { return RawChars(`\d`) }

// Number is equivalent to [\d]*.
func Number() Expr { return ZeroOrMore(CharDigit()) }

// CharCr is equivalent to [\r].
func CharCr() *CharClass { return RawChars(`\r`) }

// CharLf is equivalent to [\n].
func CharLf() *CharClass { return RawChars(`\n`) }

// CharSpace is equivalent to [\s].
func CharSpace() *CharClass { return RawChars(`\s`) }

func charNonSpace() *CharClass { return RawChars(`\S`) }

// CharVertSpace is equivalent to [\r\n].
func CharVertSpace() *CharSet { return Set(CharCr(), CharLf()) }

// CharHorizSpace is equivalent to [^\S\r\n].
func CharHorizSpace() *CharSet { return NotSet(charNonSpace(), CharVertSpace()) }

// AnyChar is equivalent to ".".
func AnyChar() *RawPattern { return Raw(".") }

// StartOfLine is equivalent to "^".
func StartOfLine() *RawPattern { return Raw("^") }

// EndOfLine is equivalent to "$".
func EndOfLine() *RawPattern { return Raw("$") }

// StartOfFile is equivalent to \A.
func StartOfFile() *RawPattern { return Raw(`\A`) }

// EndOfFile is equivalent to \z.
func EndOfFile() *RawPattern { return Raw(`\z`) }

// LineBreak is equivalent to \r?\n.
func LineBreak() *Sequence { return Seq(Optional(CharCr()), CharLf()) }

// Space is equivalent to [\s]*.
func Space() Expr { return ZeroOrMore(CharSpace()) }

// NonSpace is equivalent to [\S]*.
func NonSpace() Expr { return ZeroOrMore(charNonSpace()) }

// VertSpace is equivalent to [\r\n]*.
func VertSpace() Expr { return ZeroOrMore(CharVertSpace()) }

// HorizSpace is equivalent to [^\S\r\n]*.
func HorizSpace() Expr { return ZeroOrMore(CharHorizSpace()) }

// Line is equivalent to [^\r\n]*.
func Line() Expr { return ZeroOrMore(CharVertSpace().Invert()) }

// IgnoreCase is equivalent to (?i).
func IgnoreCase() *RawPattern { return Raw(`(?i)`) }

// SenseCase is equivalent to (?-i).
func SenseCase() *RawPattern { return Raw(`(?-i)`) }
