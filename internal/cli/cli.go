// Package cli is the command-line front end. Every command is one call into
// the pantry followed by rendering its result.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/pantry"
	"github.com/erazemk/shramba/internal/query"
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

// App runs commands against a pantry.
type App struct {
	Pantry *pantry.Pantry
	// DB backs the info command; it may be nil.
	DB  *sqlx.DB
	Out io.Writer
	Err io.Writer
	Now func() time.Time

	// ShowZero and Sort are the list defaults.
	ShowZero bool
	Sort     query.SortKey
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"list":   {"list [-q text] [-house h -room r -storage s] [-category c] [-zero] [-expired] [-soon] [-sort k]", (*App).list},
		"add":    {"add -name n [-barcode b] [-category c] [-qty n] [-expiry d] [-opened d] [-shelf m] [-house h -room r -storage s]", (*App).add},
		"edit":   {"edit <id> [-name n] [-barcode b] [-category c] [-qty n] [-expiry d] [-opened d | -closed] [-shelf m] [-house h -room r -storage s]", (*App).edit},
		"show":   {"show <id>", (*App).show},
		"rm":     {"rm <id>", (*App).remove},
		"qty":    {"qty <id> <delta>", (*App).quantity},
		"undo":   {"undo", (*App).undo},
		"loc":    {"loc ls|add|mv|rm|qr ...", (*App).loc},
		"cat":    {"cat ls|add|mv|rm ...", (*App).cat},
		"scan":   {"scan [-mode smart|barcode|location] <text>", (*App).scan},
		"export": {"export [file]", (*App).export},
		"import": {"import <file>", (*App).importFile},
		"info":   {"info", (*App).info},
	}
}

// Usage is the command list printed by help.
const Usage = `Commands:
  list     list items (filters: -q, -house/-room/-storage, -category, -zero, -expired, -soon, -sort)
  add      add an item
  edit     change an item
  show     show one item
  rm       delete an item
  qty      change an item's quantity by a delta
  undo     undo the last quantity change or delete
  loc      manage locations: ls, add, mv, rm, qr
  cat      manage categories: ls, add, mv, rm
  scan     classify scanned text (location QR or barcode)
  export   write a backup (stdout without a file)
  import   replace everything with a backup
  info     show the stored records
`

// Run executes one command line.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Err, Usage)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "-help" {
		fmt.Fprint(a.Out, Usage)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(a.Err, Usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	err := cmd.run(a, ctx, args[1:])
	if errors.Is(err, ErrUsage) {
		fmt.Fprintf(a.Err, "usage: shramba %s\n", cmd.usage)
	}
	return err
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// failed reports whether err means the command did not take effect. A
// persistence failure still leaves the change in place.
func failed(err error) bool {
	return err != nil && !errors.Is(err, model.ErrPersistence)
}

// resolve finds the item whose ID is id or starts with it.
func (a *App) resolve(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", usageErr("missing item id")
	}
	var found []string
	for _, item := range a.Pantry.Items() {
		if item.ID == id {
			return id, nil
		}
		if strings.HasPrefix(item.ID, id) {
			found = append(found, item.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: item %s", model.ErrNotFound, id)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: id %q matches %d items", model.ErrConflict, id, len(found))
	}
}

// locationFlags registers -house, -room and -storage on fs.
type locationFlags struct {
	house, room, storage string
}

func (l *locationFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.house, "house", "", "")
	fs.StringVar(&l.room, "room", "", "")
	fs.StringVar(&l.storage, "storage", "", "")
}

func (l *locationFlags) location() model.Location {
	return model.Location{
		House:   strings.TrimSpace(l.house),
		Room:    strings.TrimSpace(l.room),
		Storage: strings.TrimSpace(l.storage),
	}
}

// nodeArgs turns positional "house [room [storage]]" arguments into a node.
func nodeArgs(args []string) (model.Location, error) {
	if len(args) == 0 || len(args) > 3 {
		return model.Location{}, usageErr("expected <house> [room [storage]]")
	}
	var loc model.Location
	parts := []*string{&loc.House, &loc.Room, &loc.Storage}
	for i, arg := range args {
		*parts[i] = strings.TrimSpace(arg)
	}
	return loc, nil
}
