package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/erazemk/shramba/internal/store"
)

func (a *App) export(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		return a.Pantry.Export(a.Out)
	case 1:
	default:
		return usageErr("expected at most one file")
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := a.Pantry.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[0], err)
	}
	fmt.Fprintf(a.Out, "Exported to %s.\n", args[0])
	return nil
}

func (a *App) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("expected one file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	err = a.Pantry.Import(ctx, f)
	if failed(err) {
		return err
	}
	fmt.Fprintf(a.Out, "Imported %d items from %s.\n", len(a.Pantry.Items()), args[0])
	return err
}

// info lists the stored records with their versions and sizes.
func (a *App) info(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageErr("info takes no arguments")
	}
	if a.DB == nil {
		return errors.New("info needs an open database")
	}
	recs, err := store.ListRecords(ctx, a.DB)
	if err != nil {
		return err
	}

	s := newStyles(a.Out)
	if len(recs) == 0 {
		fmt.Fprintln(a.Out, s.muted.Render("Nothing saved yet."))
		return nil
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.muted).
		Headers("RECORD", "VERSION", "BYTES", "UPDATED")
	for _, r := range recs {
		t.Row(r.Name, strconv.Itoa(r.Version), strconv.Itoa(len(r.Data)), r.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return s.header
		}
		return s.cell
	})
	fmt.Fprintln(a.Out, t.Render())
	return nil
}
