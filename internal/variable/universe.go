package variable

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadUniverse loads the catchment identifier universe from a sidecar text
// file: one identifier per line, blank lines and '#' comments skipped. The
// file is exported from the polygon catalog so the tables can be created
// without reading geometries.
func ReadUniverse(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catchments file: %w", err)
	}
	defer file.Close()

	var ids []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		id := strings.TrimSpace(scanner.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("catchments file %s: identifier %q repeated at line %d", path, id, line)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catchments file: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("catchments file %s lists no identifiers", path)
	}
	return ids, nil
}
