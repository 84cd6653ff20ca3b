package packing

import (
	"bufio"
	"strings"
)

var bulletMarkers = []string{"-", "•", "*"}

// ParseCategories reads the CATEGORY:/- item line grammar produced by the
// language model. Headers without any item are dropped; a repeated header
// reopens the earlier category of that name.
func ParseCategories(text string) []Category {
	var (
		out     []Category
		index   = make(map[string]int)
		current *Category
	)

	flush := func() {
		if current == nil || len(current.Items) == 0 {
			current = nil
			return
		}
		if i, ok := index[current.Name]; ok {
			out[i].Items = append(out[i].Items, current.Items...)
		} else {
			index[current.Name] = len(out)
			out = append(out, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			flush()
			if name := headerName(line); name != "" {
				current = &Category{Name: name}
			}
			continue
		}

		if item, ok := stripBullet(line); ok {
			if current != nil && item != "" {
				current.Items = append(current.Items, Item{Name: item, Quantity: 1})
			}
			continue
		}

		if current != nil && !strings.Contains(line, ":") {
			current.Items = append(current.Items, Item{Name: line, Quantity: 1})
		}
	}
	flush()
	return out
}

func headerName(line string) string {
	name := strings.TrimSuffix(line, ":")
	name = strings.Trim(name, "#*-• \t")
	return strings.TrimSpace(name)
}

func stripBullet(line string) (string, bool) {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
