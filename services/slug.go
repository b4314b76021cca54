package services

import (
	"context"
	"fmt"

	"github.com/dixis/dixis/pkg/slug"
)

// uniqueSlug slugifies name and appends -1, -2, ... until taken reports the
// candidate free.
func uniqueSlug(ctx context.Context, name, fallback string, taken func(context.Context, string) (bool, error)) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = fallback
	}

	candidate := base
	for i := 1; ; i++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
