// Package session owns the dashboard state. Every user interaction becomes a
// Command applied by the Controller; renderers only ever see snapshots.
package session

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"borelog/adapters/tabular"
	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/errors"
	"borelog/ports"
)

// Options are the analysis settings applied to every upload.
type Options struct {
	Properties []string
	Thresholds analysis.Thresholds
}

// DefaultOptions plots the default property set with the default thresholds.
func DefaultOptions() Options {
	return Options{
		Properties: append([]string(nil), borehole.DefaultProperties...),
		Thresholds: analysis.DefaultThresholds(),
	}
}

// Command is a user action applied to the session.
type Command interface {
	commandName() string
}

// Upload replaces the table with a freshly parsed file.
type Upload struct {
	Filename string
	Data     []byte
}

// SelectBorehole changes the borehole whose subset is shown.
type SelectBorehole struct {
	ID string
}

// Reset clears the session.
type Reset struct{}

func (Upload) commandName() string         { return "upload" }
func (SelectBorehole) commandName() string { return "select" }
func (Reset) commandName() string          { return "reset" }

// Controller serializes commands against a single shared session.
type Controller struct {
	mu     sync.Mutex
	state  State
	opts   Options
	ledger ports.UploadLedger
}

// NewController creates a controller with an empty session.
func NewController(opts Options, ledger ports.UploadLedger) *Controller {
	c := &Controller{opts: opts, ledger: ledger}
	c.Init()
	return c
}

// Init puts the session into its initial empty state.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
}

// Options returns the analysis settings.
func (c *Controller) Options() Options { return c.opts }

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply dispatches one command and returns the resulting snapshot. A failed
// command leaves the table and selection untouched and records an error
// message instead.
func (c *Controller) Apply(ctx context.Context, cmd Command) (State, error) {
	var err error
	switch cmd := cmd.(type) {
	case Upload:
		err = c.upload(ctx, cmd)
	case SelectBorehole:
		err = c.selectBorehole(cmd)
	case Reset:
		c.reset()
	default:
		err = errors.InvalidInput(fmt.Sprintf("unknown command %T", cmd))
	}

	if err != nil {
		name := "command"
		if cmd != nil {
			name = cmd.commandName()
		}
		log.Printf("[Session] %s failed: %v", name, err)
		c.mu.Lock()
		c.state.Message = &Message{Level: levelFor(err), Text: errorText(err)}
		c.mu.Unlock()
	}
	return c.Snapshot(), err
}

func (c *Controller) upload(ctx context.Context, cmd Upload) error {
	table, err := tabular.Parse(cmd.Filename, cmd.Data)
	if err != nil {
		return err
	}

	record := borehole.NewUpload(cmd.Filename, table)
	next := State{
		Table:    table,
		Filename: cmd.Filename,
		UploadID: record.ID,
		Message:  &Message{Level: LevelSuccess, Text: fmt.Sprintf("%s uploaded successfully!", cmd.Filename)},
		table:    newTableViews(table, c.opts),
	}
	if ids := table.Schema().Boreholes; len(ids) > 0 {
		next.Selected = ids[0]
	}
	next.subset = newSubsetViews(table, next.Selected, c.opts)

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	if c.ledger != nil {
		if err := c.ledger.Record(ctx, record); err != nil {
			log.Printf("[Ledger] Failed to record upload %s: %v", record.ID, err)
		}
	}
	log.Printf("[Session] Loaded %s (%d rows, %d boreholes)", cmd.Filename, record.Rows, record.Boreholes)
	return nil
}

func (c *Controller) selectBorehole(cmd SelectBorehole) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Table == nil {
		return errors.InvalidInput("upload a file before selecting a borehole")
	}
	if !slices.Contains(c.state.Table.Schema().Boreholes, cmd.ID) {
		return errors.InvalidInput(fmt.Sprintf("unknown borehole %q", cmd.ID))
	}
	if cmd.ID == c.state.Selected {
		return nil
	}

	c.state.Selected = cmd.ID
	c.state.subset = newSubsetViews(c.state.Table, cmd.ID, c.opts)
	c.state.Message = nil
	return nil
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Message: &Message{Level: LevelInfo, Text: "Data has been reset."}}
	log.Printf("[Session] Reset")
}

func levelFor(err error) Level {
	if errors.Is(err, errors.CodeInputEmpty) {
		return LevelWarning
	}
	return LevelError
}

func errorText(err error) string {
	switch {
	case errors.Is(err, errors.CodeInputMalformed):
		return fmt.Sprintf("Error reading file: %v", err)
	case errors.Is(err, errors.CodeInputEmpty):
		return fmt.Sprintf("The uploaded file is empty: %v", err)
	}
	return err.Error()
}

// Notify replaces the user-visible message without touching the table.
func (c *Controller) Notify(level Level, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Message = &Message{Level: level, Text: text}
}
