package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/guidebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
)

// RelatedCmd prints category and related-page assignments without rendering.
type RelatedCmd struct {
	Slug     string `arg:"" optional:"" help:"Only show this page"`
	Strategy string `short:"s" help:"Override related.strategy (seeded or first-fit)"`
	JSON     bool   `name:"json" help:"Print JSON instead of text"`
}

func (r *RelatedCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := overrideStrategy(cfg, r.Strategy); err != nil {
		return err
	}

	assignments, err := build.Assignments(ctx, cfg)
	if err != nil {
		return err
	}
	if r.Slug != "" {
		assignments = filterAssignments(assignments, r.Slug)
		if len(assignments) == 0 {
			return ferrors.ValidationError("unknown page slug").WithContext("slug", r.Slug).Build()
		}
	}

	w := g.out()
	if r.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(assignments)
	}
	for _, a := range assignments {
		fmt.Fprintf(w, "%s [%s]\n", a.Slug, a.Category)
		if len(a.Related) == 0 {
			fmt.Fprintln(w, "  (no related pages)")
			continue
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(a.Related, ", "))
	}
	return nil
}

func filterAssignments(in []build.Assignment, slug string) []build.Assignment {
	for _, a := range in {
		if a.Slug == slug {
			return []build.Assignment{a}
		}
	}
	return nil
}
