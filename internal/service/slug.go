package service

import (
	"fmt"
	"strings"

	"buildhub/internal/util"
)

const maxSlugRunes = 200

// uniqueSlug slugifies source and appends -2, -3, ... until exists reports
// the candidate as free.
func uniqueSlug(source string, exists func(string) (bool, error)) (string, error) {
	base := util.Slugify(source)
	if r := []rune(base); len(r) > maxSlugRunes {
		base = strings.Trim(string(r[:maxSlugRunes]), "-")
	}
	if base == "" {
		base = "untitled"
	}

	slug := base
	for i := 2; ; i++ {
		taken, err := exists(slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
