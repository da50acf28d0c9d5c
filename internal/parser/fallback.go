package parser

import (
	"regexp"
	"strings"

	"github.com/jayminwest/kotadb-index/internal/model"
)

// fallbackPattern pairs a line-matching regex with the symbol kind it
// produces. Capture group 1 is always "export " (or empty); the last
// capture group is the declared name.
type fallbackPattern struct {
	kind SymbolKind
	re   *regexp.Regexp
}

// SymbolKind is re-exported here to keep fallback.go self-contained for
// readers; it is model.SymbolKind under the hood.
type SymbolKind = model.SymbolKind

var fallbackPatterns = []fallbackPattern{
	{model.SymbolFunction, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s+([A-Za-z_$][\w$]*)`)},
	{model.SymbolClass, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)},
	{model.SymbolInterface, regexp.MustCompile(`^\s*(export\s+)?interface\s+([A-Za-z_$][\w$]*)`)},
	{model.SymbolType, regexp.MustCompile(`^\s*(export\s+)?type\s+([A-Za-z_$][\w$]*)\s*[=<]`)},
	{model.SymbolEnum, regexp.MustCompile(`^\s*(export\s+)?(const\s+)?enum\s+([A-Za-z_$][\w$]*)`)},
	{model.SymbolConstant, regexp.MustCompile(`^\s*(export\s+)?const\s+([A-Za-z_$][\w$]*)\s*=`)},
	{model.SymbolVariable, regexp.MustCompile(`^\s*(export\s+)?(let|var)\s+([A-Za-z_$][\w$]*)\s*=?`)},
}

// Fallback runs a line-oriented regex pass over source when full parsing
// and recovery both fail to produce a usable AST (spec.md §4.2). It finds
// top-level function/class/interface/type/enum/const declarations and
// produces approximate symbols tagged FromFallback so downstream consumers
// know precision is reduced.
func Fallback(content []byte) []model.Symbol {
	lines := strings.Split(string(content), "\n")
	var out []model.Symbol

	for i, line := range lines {
		for _, fp := range fallbackPatterns {
			m := fp.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[len(m)-1]
			exported := strings.Contains(m[0], "export")
			lineNo := i + 1
			out = append(out, model.Symbol{
				Name:      name,
				Kind:      fp.kind,
				LineStart: lineNo,
				LineEnd:   lineNo,
				Signature: strPtr(strings.TrimSpace(line)),
				Metadata: model.SymbolMetadata{
					IsExported:   exported,
					FromFallback: true,
				},
			})
			break // first matching pattern wins for this line
		}
	}
	return out
}

func strPtr(s string) *string { return &s }
