package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CompiledTableRanges lists the [minEdition, maxEdition] pairs already
// persisted for schemaName, by reading the tables directory rather than
// recompiling anything. Used to warm the in-process cache at startup.
func (s *FileSystemStore) CompiledTableRanges(schemaName string) ([][2]string, error) {
	dir := filepath.Join(s.schemaDir(schemaName), "tables")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tables directory for %q: %w", schemaName, err)
	}

	ranges := make([][2]string, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		parts := strings.SplitN(name, "_", 2)
		if len(parts) != 2 {
			continue
		}
		ranges = append(ranges, [2]string{parts[0], parts[1]})
	}
	return ranges, nil
}
