// Package console is the interactive front end: a framed main menu, line
// prompts, and note cards.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/models"
	"github.com/starford/zametka/internal/noteservice"
	"github.com/starford/zametka/internal/query"
)

type menuItem struct {
	keys   []string
	name   string
	action func(context.Context) error
	exit   bool
}

// label shows the primary key followed by its aliases, as in "q (x)".
func (it menuItem) label() string {
	if len(it.keys) == 1 {
		return it.keys[0]
	}
	return fmt.Sprintf("%s (%s)", it.keys[0], strings.Join(it.keys[1:], ", "))
}

type menu struct {
	header string
	items  []menuItem
}

func (m menu) keys() []string {
	var out []string
	for _, it := range m.items {
		out = append(out, it.keys...)
	}
	return out
}

func (m menu) lookup(key string) (menuItem, bool) {
	for _, it := range m.items {
		for _, k := range it.keys {
			if k == key {
				return it, true
			}
		}
	}
	return menuItem{}, false
}

// Console runs the main menu loop against a note service.
type Console struct {
	svc    *noteservice.Service
	prompt *prompter
	out    io.Writer
	logger *slog.Logger
}

// New creates a console reading answers from in and drawing on out.
func New(svc *noteservice.Service, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		svc:    svc,
		prompt: newPrompter(in, out),
		out:    out,
		logger: logger,
	}
}

// Run shows the main menu until the user exits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	m := c.mainMenu()
	for ctx.Err() == nil {
		fmt.Fprintln(c.out, renderMenu(m))
		key, err := c.prompt.choice(menuMakeChoice, m.keys())
		if err != nil {
			return c.finish(err)
		}
		item, _ := m.lookup(key)
		if item.exit {
			return c.finish(nil)
		}
		if err := item.action(ctx); err != nil {
			return c.finish(err)
		}
	}
	return nil
}

func (c *Console) finish(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fmt.Fprintln(c.out, msgBye)
	return nil
}

func (c *Console) mainMenu() menu {
	return menu{
		header: menuHeader,
		items: []menuItem{
			{keys: []string{"1"}, name: itemNew, action: c.newNote},
			{keys: []string{"2"}, name: itemShowAll, action: c.showAll},
			{keys: []string{"3"}, name: itemByTitle, action: c.searchByTitle},
			{keys: []string{"4"}, name: itemByDateRange, action: c.searchByDateRange},
			{keys: []string{"5"}, name: itemByDaytime, action: c.searchByDaytimeRange},
			{keys: []string{"6"}, name: itemByID, action: c.findByID},
			{keys: []string{"7"}, name: itemEdit, action: c.editNote},
			{keys: []string{"8"}, name: itemDelete, action: c.deleteNote},
			{keys: []string{"q", "0"}, name: itemExit, exit: true},
		},
	}
}

func (c *Console) newNote(ctx context.Context) error {
	title, err := c.prompt.title(askTitle, false)
	if err != nil {
		return err
	}
	body, err := c.prompt.text(askBody)
	if err != nil {
		return err
	}
	n, err := c.svc.CreateNote(ctx, title, body)
	if err != nil {
		c.logger.Debug("console: create failed", slog.String("error", err.Error()))
		fmt.Fprintln(c.out, msgSaveFailed)
		return nil
	}
	fmt.Fprintf(c.out, msgSaved+"\n", n.ID)
	fmt.Fprintln(c.out, renderNote(n))
	return nil
}

func (c *Console) showAll(ctx context.Context) error {
	type order struct {
		key  query.SortKey
		desc bool
	}
	o, err := ask(c.prompt, askSort, func(s string) (order, error) {
		desc := strings.HasPrefix(s, "-")
		key, err := query.ParseSortKey(strings.TrimPrefix(s, "-"))
		return order{key: key, desc: desc}, err
	}, wrongSort)
	if err != nil {
		return err
	}
	notes, err := c.svc.AllNotes(ctx)
	if err != nil {
		return err
	}
	query.Sort(notes, o.key, o.desc)
	c.showList(notes)
	return nil
}

func (c *Console) searchByTitle(ctx context.Context) error {
	sample, err := c.prompt.title(askTitleSample, true)
	if err != nil {
		return err
	}
	notes, err := c.svc.NotesByTitle(ctx, sample)
	if err != nil {
		return err
	}
	query.Sort(notes, query.SortByID, false)
	c.showList(notes)
	return nil
}

func (c *Console) searchByDateRange(ctx context.Context) error {
	attr, from, to, err := c.askRange(c.prompt.date, askDateFrom, askDateTo)
	if err != nil {
		return err
	}
	notes, err := c.svc.NotesByDateRange(ctx, from, to, attr)
	if err != nil {
		return err
	}
	query.Sort(notes, sortKeyFor(attr), false)
	c.showList(notes)
	return nil
}

func (c *Console) searchByDaytimeRange(ctx context.Context) error {
	attr, from, to, err := c.askRange(c.prompt.clock, askClockFrom, askClockTo)
	if err != nil {
		return err
	}
	notes, err := c.svc.NotesByDaytimeRange(ctx, from, to, attr)
	if err != nil {
		return err
	}
	query.Sort(notes, sortKeyFor(attr), false)
	c.showList(notes)
	return nil
}

func (c *Console) askRange(read func(string) (time.Time, error), fromPrompt, toPrompt string) (models.DateAttribute, time.Time, time.Time, error) {
	attr, err := ask(c.prompt, askAttribute, models.ParseDateAttribute, wrongAttribute)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	from, err := read(fromPrompt)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	to, err := read(toPrompt)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return attr, from, to, nil
}

func (c *Console) findByID(ctx context.Context) error {
	n, found, err := c.askNote(ctx)
	if err != nil || !found {
		return err
	}
	fmt.Fprintln(c.out, renderNote(n))
	return nil
}

func (c *Console) editNote(ctx context.Context) error {
	n, found, err := c.askNote(ctx)
	if err != nil || !found {
		return err
	}
	fmt.Fprintln(c.out, renderNote(n))

	title, err := c.prompt.title(askNewTitle, true)
	if err != nil {
		return err
	}
	replace, err := c.prompt.yesNo(askReplaceBody, false)
	if err != nil {
		return err
	}
	body := n.Body
	if replace {
		if body, err = c.prompt.text(askBody); err != nil {
			return err
		}
	}
	if title == "" {
		title = n.Title
	}
	if title == n.Title && body == n.Body {
		fmt.Fprintln(c.out, msgKept)
		return nil
	}

	edited, err := c.svc.EditNote(ctx, n.ID, title, body)
	if err != nil {
		c.logger.Debug("console: edit failed", slog.Int("id", n.ID), slog.String("error", err.Error()))
		fmt.Fprintln(c.out, msgUpdateFailed)
		return nil
	}
	fmt.Fprintf(c.out, msgUpdated+"\n", edited.ID)
	fmt.Fprintln(c.out, renderNote(edited))
	return nil
}

func (c *Console) deleteNote(ctx context.Context) error {
	n, found, err := c.askNote(ctx)
	if err != nil || !found {
		return err
	}
	fmt.Fprintln(c.out, renderNote(n))
	ok, err := c.prompt.yesNo(fmt.Sprintf(askConfirmDelete, n.ID), false)
	if err != nil || !ok {
		return err
	}
	if _, err := c.svc.DeleteNote(ctx, n.ID); err != nil {
		fmt.Fprintf(c.out, msgNotFound+"\n", n.ID)
		return nil
	}
	fmt.Fprintf(c.out, msgDeleted+"\n", n.ID)
	return nil
}

// askNote reads a note number and loads it, telling the user when it does
// not exist. found is false in that case.
func (c *Console) askNote(ctx context.Context) (models.Note, bool, error) {
	id, err := c.prompt.integer(askNoteID, 1, math.MaxInt32)
	if err != nil {
		return models.Note{}, false, err
	}
	n, err := c.svc.GetNote(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidID) {
		fmt.Fprintf(c.out, msgNotFound+"\n", id)
		return models.Note{}, false, nil
	}
	if err != nil {
		return models.Note{}, false, err
	}
	return n, true, nil
}

func (c *Console) showList(notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(c.out, msgNothingFound)
		return
	}
	for _, n := range notes {
		fmt.Fprintln(c.out, renderNote(n))
	}
	fmt.Fprintf(c.out, msgFound+"\n", len(notes))
}

func sortKeyFor(attr models.DateAttribute) query.SortKey {
	if attr == models.Modified {
		return query.SortByModified
	}
	return query.SortByCreated
}
