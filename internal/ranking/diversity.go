package ranking

import (
	"fmt"
	"strings"
)

// ApplyDiversity recorre el feed ya ordenado y admite un item solo si ninguno de
// sus tags alcanzo maxSameTag apariciones entre los admitidos. Es una seleccion
// greedy que preserva el orden (no es MMR): los items rechazados se descartan,
// no se bajan de posicion.
func ApplyDiversity(feed RankedFeed, maxSameTag int) (RankedFeed, error) {
	if maxSameTag < 1 {
		return nil, fmt.Errorf("%w: max_same_tag must be >= 1, got %d", ErrInvalidConfig, maxSameTag)
	}
	counts := make(map[string]int)
	filtered := make(RankedFeed, 0, len(feed))
	for _, item := range feed {
		tags := uniqueTags(item.Video.Tags)
		admit := true
		for _, tag := range tags {
			if counts[tag] >= maxSameTag {
				admit = false
				break
			}
		}
		if !admit {
			continue
		}
		for _, tag := range tags {
			counts[tag]++
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
