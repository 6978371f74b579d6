package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/scan"
)

func (a *App) loc(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("missing loc subcommand")
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "ls":
		return a.locList(args)
	case "add":
		node, err := nodeArgs(args)
		if err != nil {
			return err
		}
		added, err := a.Pantry.AddLocation(ctx, node)
		if failed(err) {
			return err
		}
		if added {
			fmt.Fprintf(a.Out, "Added %s %s.\n", node.Level(), node)
		} else {
			fmt.Fprintf(a.Out, "%s %s already exists.\n", capitalize(node.Level().String()), node)
		}
		return err
	case "mv":
		if len(args) < 2 {
			return usageErr("expected <new name> <house> [room [storage]]")
		}
		node, err := nodeArgs(args[1:])
		if err != nil {
			return err
		}
		ids, err := a.Pantry.RenameLocation(ctx, node, args[0])
		if failed(err) {
			return err
		}
		fmt.Fprintf(a.Out, "Renamed %s %s to %q, %d items moved.\n", node.Level(), node, strings.TrimSpace(args[0]), len(ids))
		return err
	case "rm":
		node, err := nodeArgs(args)
		if err != nil {
			return err
		}
		err = a.Pantry.DeleteLocation(ctx, node)
		if failed(err) {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted %s %s. Run \"shramba undo\" to restore it.\n", node.Level(), node)
		return err
	case "qr":
		node, err := nodeArgs(args)
		if err != nil {
			return err
		}
		payload, err := scan.FormatLocation(node)
		if err != nil {
			return err
		}
		if !a.hasNode(node) {
			return fmt.Errorf("%w: storage %s", model.ErrNotFound, node)
		}
		fmt.Fprintln(a.Out, payload)
		return nil
	default:
		return usageErr("unknown loc subcommand %q", sub)
	}
}

// locList prints the tree below the given node, or the whole tree.
func (a *App) locList(args []string) error {
	var parent model.Location
	if len(args) > 0 {
		var err error
		if parent, err = nodeArgs(args); err != nil {
			return err
		}
		if parent.Level() == model.LevelStorage {
			return usageErr("storages have no children")
		}
		if !a.hasNode(parent) {
			return fmt.Errorf("%w: %s %s", model.ErrNotFound, parent.Level(), parent)
		}
	}

	s := newStyles(a.Out)
	var lines int
	var walk func(node model.Location, depth int)
	walk = func(node model.Location, depth int) {
		for _, name := range a.Pantry.Children(node) {
			child := node
			switch node.Level() {
			case model.LevelNone:
				child.House = name
			case model.LevelHouse:
				child.Room = name
			case model.LevelRoom:
				child.Storage = name
			}
			label := name
			if depth == 0 {
				label = s.title.Render(name)
			}
			fmt.Fprintf(a.Out, "%s%s\n", strings.Repeat("  ", depth), label)
			lines++
			if child.Level() != model.LevelStorage {
				walk(child, depth+1)
			}
		}
	}
	walk(parent, 0)

	if lines == 0 {
		fmt.Fprintln(a.Out, s.muted.Render("No locations."))
	}
	return nil
}

func (a *App) hasNode(node model.Location) bool {
	if node.IsZero() {
		return true
	}
	return slices.Contains(a.Pantry.Children(node.Parent()), node.Name())
}

func (a *App) cat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("missing cat subcommand")
	}
	sub, args := args[0], args[1:]

	switch sub {
	case "ls":
		if len(args) > 0 {
			return usageErr("cat ls takes no arguments")
		}
		counts := make(map[string]int)
		for _, item := range a.Pantry.Items() {
			counts[item.Category]++
		}
		for _, name := range a.Pantry.Categories() {
			fmt.Fprintf(a.Out, "%s (%d)\n", name, counts[name])
		}
		return nil
	case "add":
		if len(args) != 1 {
			return usageErr("expected one category name")
		}
		err := a.Pantry.AddCategory(ctx, args[0])
		if failed(err) {
			return err
		}
		fmt.Fprintf(a.Out, "Added category %q.\n", strings.TrimSpace(args[0]))
		return err
	case "mv":
		if len(args) != 2 {
			return usageErr("expected <old> <new>")
		}
		ids, err := a.Pantry.RenameCategory(ctx, args[0], args[1])
		if failed(err) {
			return err
		}
		fmt.Fprintf(a.Out, "Renamed category %q to %q, %d items changed.\n", args[0], strings.TrimSpace(args[1]), len(ids))
		return err
	case "rm":
		if len(args) != 1 {
			return usageErr("expected one category name")
		}
		ids, err := a.Pantry.DeleteCategory(ctx, args[0])
		if failed(err) {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted category %q, %d items moved to %s. Run \"shramba undo\" to restore it.\n", args[0], len(ids), model.Uncategorized)
		return err
	default:
		return usageErr("unknown cat subcommand %q", sub)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
