package assessment

import (
	"fmt"
	"strings"
)

type Category string

const (
	PHQ9 Category = "PHQ-9"
	BDI  Category = "BDI"
	HDRS Category = "HDRS"
)

var categories = []Category{PHQ9, BDI, HDRS}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts the canonical names case-insensitively.
func ParseCategory(raw string) (Category, error) {
	trimmed := strings.TrimSpace(raw)
	for _, c := range categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown assessment category %q", raw)
}

func (c Category) String() string {
	return string(c)
}
