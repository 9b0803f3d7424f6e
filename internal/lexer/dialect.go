package lexer

// Dialect is one comment style that may precede a tag declaration.
//
// Openers are matched against the start of the cursor. After an opener is
// consumed, any run of Trailing characters (interleaved with whitespace) is
// consumed as noise, so "///", "/**" and ";;;" all collapse to one comment.
type Dialect struct {
	Name     string
	Openers  []string
	Trailing string
}

// Dialects is the closed set of recognized comment styles, tried in order.
var Dialects = []Dialect{
	{Name: "c", Openers: []string{"//", "/*"}, Trailing: "/*"},
	{Name: "lisp", Openers: []string{";"}, Trailing: ";"},
	{Name: "latex", Openers: []string{"%"}, Trailing: "%"},
	{Name: "shell", Openers: []string{"#"}, Trailing: "#"},
}

// DialectByName returns the dialect with the given name.
func DialectByName(name string) (Dialect, bool) {
	for _, d := range Dialects {
		if d.Name == name {
			return d, true
		}
	}
	return Dialect{}, false
}
