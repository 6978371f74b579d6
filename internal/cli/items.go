package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/items"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/query"
	"github.com/erazemk/shramba/internal/scan"
)

func (a *App) list(_ context.Context, args []string) error {
	fs := a.flags("list")
	var loc locationFlags
	loc.register(fs)
	search := fs.String("q", "", "")
	cat := fs.String("category", "", "")
	zero := fs.Bool("zero", a.ShowZero, "")
	expired := fs.Bool("expired", false, "")
	soon := fs.Bool("soon", false, "")
	sortName := fs.String("sort", string(a.Sort), "")
	if err := fs.Parse(args); err != nil {
		return usageErr("%v", err)
	}
	if fs.NArg() > 0 {
		return usageErr("unexpected argument %q", fs.Arg(0))
	}

	sortKey, err := query.ParseSort(*sortName)
	if err != nil {
		return err
	}
	where := loc.location()
	if !where.Valid() {
		return fmt.Errorf("%w: location %q is missing a parent", model.ErrValidation, where.String())
	}

	views := a.Pantry.Query(query.Options{
		Search:   *search,
		Context:  where,
		Category: *cat,
		ShowZero: *zero,
		Expired:  *expired,
		Soon:     *soon,
		Sort:     sortKey,
	})
	renderViews(a.Out, views)
	return nil
}

// itemFlags are the fields shared by add and edit.
type itemFlags struct {
	loc      locationFlags
	name     string
	barcode  string
	category string
	qty      int
	expiry   string
	opened   string
	closed   bool
	shelf    int
}

func (f *itemFlags) register(fs *flag.FlagSet, edit bool) {
	f.loc.register(fs)
	fs.StringVar(&f.name, "name", "", "")
	fs.StringVar(&f.barcode, "barcode", "", "")
	fs.StringVar(&f.category, "category", "", "")
	fs.IntVar(&f.qty, "qty", 0, "")
	fs.StringVar(&f.expiry, "expiry", "", "")
	fs.StringVar(&f.opened, "opened", "", "")
	fs.IntVar(&f.shelf, "shelf", 0, "")
	if edit {
		fs.BoolVar(&f.closed, "closed", false, "")
	}
}

// parseDate accepts an empty string as the zero Date and "today" as today.
func (a *App) parseDate(s string) (model.Date, error) {
	switch strings.TrimSpace(s) {
	case "":
		return model.Date{}, nil
	case "today":
		return model.DateOf(a.now()), nil
	}
	return model.ParseDate(s)
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	var f itemFlags
	f.register(fs, false)
	if err := fs.Parse(args); err != nil {
		return usageErr("%v", err)
	}
	if fs.NArg() > 0 {
		return usageErr("unexpected argument %q", fs.Arg(0))
	}

	d := items.Draft{
		Barcode:  f.barcode,
		Name:     f.name,
		Category: f.category,
		Quantity: f.qty,
		Location: f.loc.location(),
	}
	var err error
	if d.Expiry, err = a.parseDate(f.expiry); err != nil {
		return err
	}
	if f.opened != "" || f.shelf > 0 {
		date, err := a.parseDate(f.opened)
		if err != nil {
			return err
		}
		d.Opened = &model.Opened{Date: date, ShelfLifeMonths: f.shelf}
	}

	res, err := a.Pantry.AddItem(ctx, d)
	if failed(err) {
		return err
	}
	if res.Merged {
		fmt.Fprintf(a.Out, "Merged into %s %q, quantity now %d.\n", short(res.Item.ID), res.Item.Name, res.Item.Quantity)
	} else {
		fmt.Fprintf(a.Out, "Added %s %q.\n", short(res.Item.ID), res.Item.Name)
	}
	return err
}

func (a *App) edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErr("missing item id")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}

	fs := a.flags("edit")
	var f itemFlags
	f.register(fs, true)
	if err := fs.Parse(args[1:]); err != nil {
		return usageErr("%v", err)
	}
	if fs.NArg() > 0 {
		return usageErr("unexpected argument %q", fs.Arg(0))
	}

	var p items.Patch
	var locationSet bool
	var visitErr error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			p.Name = &f.name
		case "barcode":
			p.Barcode = &f.barcode
		case "category":
			p.Category = &f.category
		case "qty":
			p.Quantity = &f.qty
		case "expiry":
			date, err := a.parseDate(f.expiry)
			if err != nil {
				visitErr = err
				return
			}
			p.Expiry = &date
		case "opened":
			date, err := a.parseDate(f.opened)
			if err != nil {
				visitErr = err
				return
			}
			opened := true
			p.Opened = &opened
			if !date.IsZero() {
				p.OpenedDate = &date
			}
		case "closed":
			opened := !f.closed
			p.Opened = &opened
		case "shelf":
			p.ShelfLifeMonths = &f.shelf
		case "house", "room", "storage":
			locationSet = true
		}
	})
	if visitErr != nil {
		return visitErr
	}
	if locationSet {
		loc := f.loc.location()
		p.Location = &loc
	}

	item, err := a.Pantry.UpdateItem(ctx, id, p)
	if failed(err) {
		return err
	}
	fmt.Fprintf(a.Out, "Updated %s %q.\n", short(item.ID), item.Name)
	return err
}

func (a *App) show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("expected one item id")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	item, err := a.Pantry.Item(id)
	if err != nil {
		return err
	}

	renderItem(a.Out, a.view(item))
	return nil
}

func (a *App) view(item model.Item) query.View {
	v := query.View{Item: item}
	v.Expiry, _ = expiry.Effective(item)
	v.Status, v.DaysLeft = expiry.StatusOf(item, a.now(), a.Pantry.ThresholdDays())
	return v
}

func (a *App) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr("expected one item id")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	item, err := a.Pantry.DeleteItem(ctx, id)
	if failed(err) {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted %q. Run \"shramba undo\" to restore it.\n", item.Name)
	return err
}

func (a *App) quantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErr("expected an item id and a delta")
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	delta, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
	if err != nil {
		return usageErr("delta %q is not a number", args[1])
	}

	before, err := a.Pantry.Item(id)
	if err != nil {
		return err
	}
	item, err := a.Pantry.AdjustQuantity(ctx, id, delta)
	if failed(err) {
		return err
	}
	if item.Quantity == before.Quantity {
		fmt.Fprintf(a.Out, "%q is already at %d.\n", item.Name, item.Quantity)
		return err
	}
	fmt.Fprintf(a.Out, "%q: %d -> %d.\n", item.Name, before.Quantity, item.Quantity)
	return err
}

func (a *App) undo(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return usageErr("undo takes no arguments")
	}
	r, ok, err := a.Pantry.Undo(ctx)
	if !ok {
		fmt.Fprintln(a.Out, "Nothing to undo.")
		return nil
	}
	if failed(err) {
		return err
	}
	fmt.Fprintf(a.Out, "Undone: %s.\n", r.Describe())
	return err
}

func (a *App) scan(_ context.Context, args []string) error {
	fs := a.flags("scan")
	modeName := fs.String("mode", string(scan.ModeSmart), "")
	if err := fs.Parse(args); err != nil {
		return usageErr("%v", err)
	}
	mode, err := scan.ParseMode(*modeName)
	if err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")

	res, err := a.Pantry.Scan(text, mode)
	if err != nil {
		return err
	}

	switch res.Kind {
	case scan.KindLocation:
		if !res.Known {
			fmt.Fprintf(a.Out, "Location %s does not exist yet. Create it with \"shramba loc add\".\n", res.Location)
			return nil
		}
		fmt.Fprintf(a.Out, "Location %s\n", res.Location)
		renderViews(a.Out, a.Pantry.Query(query.Options{Context: res.Location, ShowZero: a.ShowZero, Sort: a.Sort}))
	case scan.KindBarcode:
		if len(res.Matches) == 0 {
			fmt.Fprintf(a.Out, "No item with barcode %s. Add it with: shramba add -barcode %s -name <name>\n", res.Barcode, res.Barcode)
			return nil
		}
		fmt.Fprintf(a.Out, "Barcode %s\n", res.Barcode)
		views := make([]query.View, len(res.Matches))
		for i, item := range res.Matches {
			views[i] = a.view(item)
		}
		renderViews(a.Out, views)
	}
	return nil
}
