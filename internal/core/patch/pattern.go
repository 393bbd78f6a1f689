package patch

import (
	"regexp"
	"sync"
)

var compiled sync.Map // pattern text -> *regexp.Regexp

// Returns the compiled form of expr, compiling it on first use. Entries are
// never replaced once stored.
func pattern(expr string) *regexp.Regexp {
	if re, ok := compiled.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := compiled.LoadOrStore(expr, regexp.MustCompile(expr))
	return re.(*regexp.Regexp)
}

const (
	sourceHeaderExpr = `^--- ([^\t\r\n]*)`
	targetHeaderExpr = `^\+\+\+ ([^\t\r\n]*)`
	hunkHeaderExpr   = `^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`
)
