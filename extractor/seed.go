package extractor

import (
	"context"
	"fmt"

	"nutri-lens/config"
	"nutri-lens/errs"
	"nutri-lens/llm"
)

// CategoryWriter stores a category by name, creating it when absent.
type CategoryWriter interface {
	UpsertCategory(ctx context.Context, name string) error
}

// SeedCategories asks the model for a starter category list and stores it.
// It returns the names that were written.
func SeedCategories(ctx context.Context, gen llm.Generator, store CategoryWriter) ([]string, error) {
	resp, err := gen.GenerateJSON(ctx, llm.Request{
		Task:        llm.TaskSeed,
		Instruction: seedInstruction,
		Prompt:      seedPrompt,
		Schema:      categorySeedSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: category seed: %v", errs.ErrGenerationFailed, err)
	}

	items, err := llm.DecodeJSON[[]struct {
		Name string `json:"name"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("%w: category seed: %v", errs.ErrGenerationFailed, err)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	names = cleanNames(names)

	for _, name := range names {
		if err := store.UpsertCategory(ctx, name); err != nil {
			return nil, fmt.Errorf("store category %q: %w", name, err)
		}
		config.Logger.Infof("category seeded: %s", name)
	}
	return names, nil
}
