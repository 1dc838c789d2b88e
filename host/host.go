// Package host drives the plugin outside a launcher: a concrete live query
// and a line-oriented session used by "quicktrans serve".
package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/minios-linux/quicktrans/results"
)

// Query is one live query. It is safe for concurrent use.
type Query struct {
	text    string
	invalid atomic.Bool

	mu    sync.Mutex
	items []results.Item
}

// NewQuery returns a valid query for text.
func NewQuery(text string) *Query {
	return &Query{text: text}
}

// String returns the query text.
func (q *Query) String() string { return q.text }

// IsValid reports whether the query has not been superseded.
func (q *Query) IsValid() bool { return !q.invalid.Load() }

// Invalidate marks the query as superseded.
func (q *Query) Invalidate() { q.invalid.Store(true) }

// Add appends items in order.
func (q *Query) Add(items ...results.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Items returns a copy of the items added so far.
func (q *Query) Items() []results.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]results.Item, len(q.items))
	copy(out, q.items)
	return out
}

// Handler processes one query, typically plugin.Plugin.HandleQuery.
type Handler func(ctx context.Context, q *Query) error

// Logf is a printf-style logging callback.
type Logf func(format string, args ...any)

// Record is one line of JSON output in serve mode.
type Record struct {
	Seq   int            `json:"seq"`
	Query string         `json:"query"`
	Items []results.Item `json:"items,omitempty"`
	Error string         `json:"error,omitempty"`
	// Copied is the 1-based item whose action ran after a copy command.
	Copied int `json:"copied,omitempty"`
}

// CopyCommand runs the first action of a finished result:
//
//	!copy <seq> <n>
//
// It is recognized before trigger routing and never supersedes a query.
const CopyCommand = "!copy"

// keepFinished is how many finished queries stay addressable by CopyCommand.
const keepFinished = 32

// Session reads queries line by line. Each line that starts with Trigger
// supersedes the query before it; finished queries are written to Out.
type Session struct {
	// Trigger is the prefix that routes a line to the plugin ("" = every line).
	Trigger string
	// JSON selects one Record per line instead of plain text.
	JSON bool
	// Handler runs each query.
	Handler Handler
	// Out receives results.
	Out io.Writer
	// OnLog emits debug messages.
	OnLog Logf

	outMu sync.Mutex

	doneMu sync.Mutex
	done   map[int][]results.Item
}

func (s *Session) log(format string, args ...any) {
	if s.OnLog != nil {
		s.OnLog(format, args...)
	}
}

// Run reads lines from r until EOF or ctx is done, then waits for the
// in-flight queries to finish.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	var (
		wg      sync.WaitGroup
		current *Query
		seq     int
	)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		var readErr error
		defer close(lines)
		defer func() { scanErr <- readErr }()

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr = scanner.Err()
	}()

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				err = <-scanErr
				break loop
			}
			if cmdSeq, n, isCmd, perr := parseCopy(line); isCmd {
				s.handleCopy(cmdSeq, n, perr)
				continue
			}
			text, routed := s.route(line)
			if !routed {
				s.log("ignoring line without trigger: %q", line)
				continue
			}
			if current != nil {
				current.Invalidate()
			}
			seq++
			q := NewQuery(text)
			current = q

			wg.Add(1)
			go func(seq int) {
				defer wg.Done()
				s.run(ctx, seq, q)
			}(seq)
		}
	}

	if ctx.Err() != nil && current != nil {
		current.Invalidate()
	}
	wg.Wait()
	if err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	return nil
}

func (s *Session) route(line string) (string, bool) {
	if s.Trigger == "" {
		return line, true
	}
	if !strings.HasPrefix(line, s.Trigger) {
		return "", false
	}
	return strings.TrimPrefix(line, s.Trigger), true
}

func (s *Session) run(ctx context.Context, seq int, q *Query) {
	err := s.Handler(ctx, q)
	if !q.IsValid() {
		// A superseded query's failure is usually the cancellation itself.
		if err != nil {
			s.log("query #%d superseded: %v", seq, err)
		} else {
			s.log("query #%d superseded", seq)
		}
		return
	}

	rec := Record{Seq: seq, Query: q.String(), Items: q.Items()}
	if err != nil {
		rec.Error = err.Error()
		rec.Items = nil
	}
	if err == nil && len(rec.Items) == 0 {
		// blank query
		return
	}
	if err == nil {
		s.remember(seq, rec.Items)
	}
	s.write(rec)
}

// ---------------------------------------------------------------------------
// Copy command
// ---------------------------------------------------------------------------

// parseCopy reports whether line is a copy command and, if so, its arguments.
func parseCopy(line string) (seq, n int, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != CopyCommand {
		return 0, 0, false, nil
	}
	if len(fields) != 3 {
		return 0, 0, true, fmt.Errorf("usage: %s <seq> <n>", CopyCommand)
	}
	if seq, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, true, fmt.Errorf("invalid query number %q", fields[1])
	}
	if n, err = strconv.Atoi(fields[2]); err != nil {
		return seq, 0, true, fmt.Errorf("invalid result number %q", fields[2])
	}
	return seq, n, true, nil
}

func (s *Session) remember(seq int, items []results.Item) {
	s.doneMu.Lock()
	defer s.doneMu.Unlock()

	if s.done == nil {
		s.done = make(map[int][]results.Item)
	}
	s.done[seq] = items
	for old := range s.done {
		if old <= seq-keepFinished {
			delete(s.done, old)
		}
	}
}

func (s *Session) lookup(seq int) ([]results.Item, bool) {
	s.doneMu.Lock()
	defer s.doneMu.Unlock()
	items, ok := s.done[seq]
	return items, ok
}

func (s *Session) handleCopy(seq, n int, parseErr error) {
	rec := Record{Seq: seq}
	if err := s.runCopy(seq, n, parseErr); err != nil {
		rec.Error = err.Error()
	} else {
		rec.Copied = n
	}
	s.write(rec)
}

func (s *Session) runCopy(seq, n int, parseErr error) error {
	if parseErr != nil {
		return parseErr
	}
	items, ok := s.lookup(seq)
	if !ok {
		return fmt.Errorf("no finished results for query #%d", seq)
	}
	if n < 1 || n > len(items) {
		return fmt.Errorf("query #%d has %d result(s), not %d", seq, len(items), n)
	}
	actions := items[n-1].Actions
	if len(actions) == 0 || actions[0].Run == nil {
		return fmt.Errorf("result %d of query #%d has no actions", n, seq)
	}
	if err := actions[0].Run(); err != nil {
		return fmt.Errorf("running %s: %w", actions[0].ID, err)
	}
	s.log("query #%d: ran %s on result %d", seq, actions[0].ID, n)
	return nil
}

func (s *Session) write(rec Record) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	if s.JSON {
		data, err := json.Marshal(rec)
		if err != nil {
			s.log("encoding record #%d: %v", rec.Seq, err)
			return
		}
		fmt.Fprintf(s.Out, "%s\n", data)
		return
	}

	if rec.Error != "" {
		fmt.Fprintf(s.Out, "#%d error: %s\n", rec.Seq, rec.Error)
		return
	}
	if rec.Copied > 0 {
		fmt.Fprintf(s.Out, "#%d copied %d\n", rec.Seq, rec.Copied)
		return
	}
	for i, it := range rec.Items {
		fmt.Fprintf(s.Out, "#%d [%d] %s\t%s\n", rec.Seq, i+1, it.Text, it.Subtext)
	}
}
