package session

import (
	"sync"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/errors"
	"borelog/internal/profile"
)

// Level classifies the message shown after a command.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is the last user-visible outcome of a command.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// State is an immutable snapshot of the dashboard session. Derived views are
// computed on first use and shared by every snapshot of the same upload, so a
// borehole selection only recomputes the subset and its profile.
type State struct {
	Table    *borehole.Table `json:"-"`
	Filename string          `json:"filename,omitempty"`
	UploadID string          `json:"upload_id,omitempty"`
	Selected string          `json:"selected,omitempty"`
	Message  *Message        `json:"message,omitempty"`

	table  *tableViews
	subset *subsetViews
}

// Loaded reports whether a table is held.
func (s State) Loaded() bool { return s.Table != nil }

// Boreholes lists the selectable borehole ids in first-appearance order.
func (s State) Boreholes() []string {
	if s.Table == nil {
		return nil
	}
	return s.Table.Schema().Boreholes
}

var errNoData = errors.New(errors.CodeNotFound, "no file uploaded yet")

// Summary returns the descriptive statistics of the full table.
func (s State) Summary() ([]analysis.ColumnSummary, error) {
	if s.table == nil {
		return nil, errNoData
	}
	return s.table.summary()
}

// Correlation returns the pairwise correlation matrix of the full table.
func (s State) Correlation() (*analysis.CorrelationMatrix, error) {
	if s.table == nil {
		return nil, errNoData
	}
	return s.table.correlation()
}

// Reliability returns the data-quality summary of the full table.
func (s State) Reliability() (*analysis.Reliability, error) {
	if s.table == nil {
		return nil, errNoData
	}
	return s.table.reliability()
}

// Subset returns the rows of the selected borehole sorted by depth.
func (s State) Subset() (*borehole.Table, error) {
	if s.subset == nil {
		return nil, errNoData
	}
	return s.subset.rows()
}

// Profile returns the depth-profile layout of the selected borehole.
func (s State) Profile() (*profile.Profile, error) {
	if s.subset == nil {
		return nil, errNoData
	}
	return s.subset.profile()
}

type tableViews struct {
	summary     func() ([]analysis.ColumnSummary, error)
	correlation func() (*analysis.CorrelationMatrix, error)
	reliability func() (*analysis.Reliability, error)
}

func newTableViews(t *borehole.Table, opts Options) *tableViews {
	return &tableViews{
		summary: sync.OnceValues(func() ([]analysis.ColumnSummary, error) {
			return analysis.Describe(t)
		}),
		correlation: sync.OnceValues(func() (*analysis.CorrelationMatrix, error) {
			return analysis.Correlate(t)
		}),
		reliability: sync.OnceValues(func() (*analysis.Reliability, error) {
			return analysis.AssessReliability(t, opts.Thresholds)
		}),
	}
}

type subsetViews struct {
	rows    func() (*borehole.Table, error)
	profile func() (*profile.Profile, error)
}

func newSubsetViews(t *borehole.Table, id string, opts Options) *subsetViews {
	rows := sync.OnceValues(func() (*borehole.Table, error) {
		return analysis.FilterBorehole(t, id)
	})
	return &subsetViews{
		rows: rows,
		profile: sync.OnceValues(func() (*profile.Profile, error) {
			sub, err := rows()
			if err != nil {
				return nil, err
			}
			return profile.Build(sub, opts.Properties)
		}),
	}
}
