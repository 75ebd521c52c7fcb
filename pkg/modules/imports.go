package modules

import (
	"bufio"
	"io"
	"regexp"
)

// importPattern matches Idris import declarations:
//
//	import Data.List
//	import public Data.Vect
//	import Data.SortedMap as M
//
// Only the imported namespace is captured; visibility and aliases are
// irrelevant for ordering.
var importPattern = regexp.MustCompile(`^\s*import\s+(?:public\s+)?([A-Za-z][A-Za-z0-9_']*(?:\.[A-Za-z][A-Za-z0-9_']*)*)`)

// parseImports extracts declared imports from module source, in declaration
// order, without duplicates. Only declared imports count; transitive
// re-exports are not followed.
func parseImports(r io.Reader) ([]string, error) {
	var imports []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := importPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if !seen[m[1]] {
			seen[m[1]] = true
			imports = append(imports, m[1])
		}
	}
	return imports, scanner.Err()
}
