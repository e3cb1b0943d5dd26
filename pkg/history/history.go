package history

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/solvkit/solvtrace/pkg/config"
	"github.com/solvkit/solvtrace/pkg/errors"
	"github.com/solvkit/solvtrace/pkg/logger"
	"github.com/solvkit/solvtrace/pkg/metrics"
)

// Row maps variable names to the values recorded for one iteration. A nil
// value is the explicit "no data" marker; absent keys are treated the same
// way.
type Row map[string]interface{}

// VariableOpts carries the optional settings for AddVariable.
type VariableOpts struct {
	// Print includes the variable in the printed iteration table
	Print bool
	// Format overrides the kind's default value format (fmt verb string)
	Format string
	// Overwrite replaces an existing variable with the same name instead
	// of warning and leaving it untouched
	Overwrite bool
}

// History records per-iteration values for a set of registered variables,
// prints a running table of selected variables, and persists the full
// record plus free-form metadata to disk.
//
// A History is not safe for concurrent use. Parallel solvers must drive a
// shared instance from a single rank and broadcast results themselves.
type History struct {
	cfg        *config.Config
	order      []string
	variables  map[string]*Variable
	printFlags map[string]bool
	metadata   map[string]interface{}
	iter       int
	startTime  time.Time
	timing     bool
	out        io.Writer
	log        *zap.Logger
	metricsOn  bool
}

// New creates a history recorder. A nil cfg uses defaults: both built-in
// columns enabled, table output on stdout, zstd-compressed snapshots.
func New(cfg *config.Config) (*History, error) {
	if cfg == nil {
		cfg = config.New("history")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid history configuration")
	}

	out := cfg.Output.Writer
	if out == nil {
		out = os.Stdout
	}

	h := &History{
		cfg:        cfg,
		variables:  make(map[string]*Variable),
		printFlags: make(map[string]bool),
		metadata:   make(map[string]interface{}),
		out:        out,
		log:        logger.With(zap.String("history", cfg.Name)),
		metricsOn:  cfg.Observability.EnableMetrics,
	}

	if cfg.Columns.IncludeIter {
		if err := h.AddVariable(iterColumn, KindInt, &VariableOpts{Print: true}); err != nil {
			return nil, err
		}
	}
	if cfg.Columns.IncludeTime {
		if err := h.AddVariable(timeColumn, KindFloat, &VariableOpts{Print: true, Format: "%9.3e"}); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Names of the built-in columns.
const (
	iterColumn = "Iter"
	timeColumn = "Time"
)

// AddVariable registers a new variable. If opts is nil the variable is not
// printed, uses the kind's default value format, and duplicate names are
// rejected with a warning.
//
// The chosen value format is validated against the kind's zero value here;
// a format that renders the zero value but not later real values will fail
// lazily at print time instead.
func (h *History) AddVariable(name string, kind Kind, opts *VariableOpts) error {
	if opts == nil {
		opts = &VariableOpts{}
	}

	if _, exists := h.variables[name]; exists && !opts.Overwrite {
		h.log.Warn("variable already defined, set Overwrite to replace",
			zap.String("variable", name))
		return nil
	}

	valueFormat := opts.Format
	if valueFormat == "" {
		valueFormat = kind.defaultFormat()
	}

	// Render the zero value both to validate the format and to size the
	// printed column.
	testString := fmt.Sprintf(valueFormat, kind.zero())
	if strings.Contains(testString, "%!") {
		return errors.Newf(errors.ErrorTypeConfig,
			"supplied format %q is invalid for variable kind %s", valueFormat, kind).
			WithDetail("variable", name).
			WithDetail("format", valueFormat)
	}

	// Widths are counted in runes so non-ASCII names keep the table aligned.
	columnWidth := utf8.RuneCountInString(testString)
	if n := utf8.RuneCountInString(name); n > columnWidth {
		columnWidth = n
	}
	// The header is centred in the column width plus two spaces each side.
	headerWidth := columnWidth + 4

	if _, exists := h.variables[name]; !exists {
		h.order = append(h.order, name)
	}
	h.variables[name] = newVariable(name, kind, valueFormat, headerWidth)
	h.printFlags[name] = opts.Print
	return nil
}

// SetLogger replaces the recorder's logger. Host solvers that carry their
// own zap tree can graft the recorder onto it; by default the process
// global logger is used.
func (h *History) SetLogger(log *zap.Logger) {
	if log != nil {
		h.log = log.With(zap.String("history", h.cfg.Name))
	}
}

// StartTiming records the reference time for the built-in "Time" column.
// It only needs to be called explicitly when the solve starts measurably
// earlier than the first Write call; otherwise the first Write arms the
// timer itself.
func (h *History) StartTiming() {
	h.startTime = time.Now()
	h.timing = true
}

// Write records the data for a single iteration. Every call is a new
// iteration: all values for one solver iteration must arrive in one call.
//
// Registered variables consume their keys in registration order; variables
// without a matching key record the "no data" marker. Any leftover keys
// name unregistered variables and fail the call with an UnknownVariable
// error. That check runs after the registered columns have already been
// written, so a failed call leaves a partially committed row behind.
func (h *History) Write(row Row) error {
	pending := make(map[string]interface{}, len(row)+2)
	for k, v := range row {
		pending[k] = v
	}

	if h.cfg.Columns.IncludeTime {
		if !h.timing {
			h.StartTiming()
			pending[timeColumn] = 0.0
		} else {
			pending[timeColumn] = time.Since(h.startTime).Seconds()
		}
	}

	if h.cfg.Columns.IncludeIter {
		pending[iterColumn] = h.iter
	}

	for _, name := range h.order {
		variable := h.variables[name]
		raw, ok := pending[name]
		if !ok {
			raw = nil
		}
		delete(pending, name)
		if err := variable.Write(raw); err != nil {
			if h.metricsOn {
				metrics.ConversionFailures.WithLabelValues(h.cfg.Name, name).Inc()
			}
			return err
		}
	}

	if len(pending) > 0 {
		unknown := make([]string, 0, len(pending))
		for name := range pending {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return errors.Newf(errors.ErrorTypeUnknownVariable,
			"unknown variables %v supplied to history recorder, recorded variables are %v",
			unknown, h.Variables()).
			WithDetail("unknown", unknown)
	}

	h.iter++
	if h.metricsOn {
		metrics.RowsRecorded.WithLabelValues(h.cfg.Name).Inc()
	}
	return nil
}

// WriteFullVariableHistory bulk-loads one variable's entire history,
// bypassing per-row writes. Intended for solvers that record values
// themselves and only use the History for persistence. The iteration
// counter is not touched; mixing this with Write is the caller's problem.
func (h *History) WriteFullVariableHistory(name string, values []interface{}) error {
	variable, ok := h.variables[name]
	if !ok {
		return errors.Newf(errors.ErrorTypeUnknownVariable,
			"unknown variable %q supplied to history recorder, recorded variables are %v",
			name, h.Variables()).
			WithDetail("unknown", name)
	}
	return variable.WriteFullHistory(values)
}

// AddMetadata attaches a free-form item to the whole record. Metadata is
// not tied to any iteration; solver options and run identifiers belong
// here.
func (h *History) AddMetadata(name string, value interface{}) {
	h.metadata[name] = value
}

// printVariables returns the print-flagged variables in registration order.
func (h *History) printVariables() []*Variable {
	vars := make([]*Variable, 0, len(h.order))
	for _, name := range h.order {
		if h.printFlags[name] {
			vars = append(vars, h.variables[name])
		}
	}
	return vars
}

// PrintHeader writes the bordered table header for the print-flagged
// variables:
//
//	+----------------------------------------------+
//	|  Iter   |    Time     |       Residual       |
//	+----------------------------------------------+
func (h *History) PrintHeader() error {
	var sb strings.Builder
	sb.WriteString("|")
	for _, variable := range h.printVariables() {
		header, err := variable.FormattedHeader("")
		if err != nil {
			return err
		}
		sb.WriteString(header)
		sb.WriteString("|")
	}

	width := utf8.RuneCountInString(sb.String())
	if width < 2 {
		width = 2
	}
	bar := "+" + strings.Repeat("-", width-2) + "+"
	if _, err := fmt.Fprintf(h.out, "%s\n%s\n%s\n", bar, sb.String(), bar); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write table header")
	}
	return nil
}

// PrintData writes one bar-delimited table row per requested iteration
// index; with no arguments only the most recent iteration is printed.
// Negative indices count back from the most recent iteration. Iterations
// where a variable recorded no value render a centred "-" placeholder.
func (h *History) PrintData(iters ...int) error {
	if len(iters) == 0 {
		iters = []int{-1}
	}

	maxIter, minIter := iters[0], iters[0]
	for _, i := range iters[1:] {
		if i > maxIter {
			maxIter = i
		}
		if i < minIter {
			minIter = i
		}
	}
	if maxIter >= h.iter || minIter < -h.iter {
		badIter := maxIter
		if maxIter < h.iter {
			badIter = minIter
		}
		return errors.Newf(errors.ErrorTypeOutOfRange,
			"requested iteration %d (zero-based) is not in the history, only %d iterations recorded",
			badIter, h.iter).
			WithDetail("iteration", badIter).
			WithDetail("recorded", h.iter)
	}

	printVars := h.printVariables()
	for _, i := range iters {
		var sb strings.Builder
		sb.WriteString("|")
		for _, variable := range printVars {
			value, err := variable.Value(i)
			if err != nil {
				return err
			}
			var cell string
			if value == nil {
				cell, err = variable.FormattedHeader("-")
			} else {
				var rendered string
				rendered, err = variable.FormattedValue(value)
				if err == nil {
					cell, err = variable.FormattedHeader(rendered)
				}
			}
			if err != nil {
				return err
			}
			sb.WriteString(cell)
			sb.WriteString("|")
		}
		if _, err := fmt.Fprintln(h.out, sb.String()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write table row")
		}
	}
	return nil
}

// Data returns a copy of all recorded data, keyed by variable name. Nil
// elements indicate iterations where no value was supplied.
func (h *History) Data() map[string][]interface{} {
	data := make(map[string][]interface{}, len(h.variables))
	for name, variable := range h.variables {
		data[name] = variable.Data()
	}
	return data
}

// Metadata returns a copy of the recorded metadata.
func (h *History) Metadata() map[string]interface{} {
	meta := make(map[string]interface{}, len(h.metadata))
	for k, v := range h.metadata {
		meta[k] = v
	}
	return meta
}

// Variables returns the registered variable names in registration order,
// which is also the printed column order.
func (h *History) Variables() []string {
	names := make([]string, len(h.order))
	copy(names, h.order)
	return names
}

// Iter returns the number of iterations recorded so far.
func (h *History) Iter() int {
	return h.iter
}

// Kind returns the declared kind of a registered variable.
func (h *History) Kind(name string) (Kind, bool) {
	variable, ok := h.variables[name]
	if !ok {
		return KindOther, false
	}
	return variable.Kind(), true
}

// Reset returns the history to its initial state: the iteration counter and
// timing reference are cleared and every variable's data is dropped.
// Registered variables and their formats survive; metadata is cleared only
// when requested.
func (h *History) Reset(clearMetadata bool) {
	h.iter = 0
	h.timing = false
	h.startTime = time.Time{}

	for _, variable := range h.variables {
		variable.Reset()
	}

	if clearMetadata {
		h.metadata = make(map[string]interface{})
	}
}
