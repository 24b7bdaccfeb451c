package datasource

import "fmt"

// nextID returns "<prefix>-NNN", numbering after len(used) and skipping any
// id already taken.
func nextID(prefix string, used []string) string {
	taken := make(map[string]bool, len(used))
	for _, id := range used {
		taken[id] = true
	}
	for n := len(used) + 1; ; n++ {
		id := fmt.Sprintf("%s-%03d", prefix, n)
		if !taken[id] {
			return id
		}
	}
}
