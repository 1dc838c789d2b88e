package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minios-linux/quicktrans/clipboard"
	"github.com/minios-linux/quicktrans/results"
)

func TestQueryInvalidateAndItems(t *testing.T) {
	q := NewQuery("fr Hello")
	if q.String() != "fr Hello" {
		t.Fatalf("String() = %q", q.String())
	}
	if !q.IsValid() {
		t.Fatalf("new query should be valid")
	}

	q.Add(results.Item{Text: "a"})
	q.Add(results.Item{Text: "b"}, results.Item{Text: "c"})
	items := q.Items()
	if len(items) != 3 || items[0].Text != "a" || items[2].Text != "c" {
		t.Fatalf("Items() = %#v", items)
	}
	items[0].Text = "changed"
	if q.Items()[0].Text != "a" {
		t.Fatalf("Items() should return a copy")
	}

	q.Invalidate()
	if q.IsValid() {
		t.Fatalf("query should be invalid after Invalidate()")
	}
}

// echoHandler waits until the query is invalidated or delay passes, like the
// debounce gate, then echoes the text as one item.
func echoHandler(delay time.Duration) Handler {
	return func(ctx context.Context, q *Query) error {
		deadline := time.Now().Add(delay)
		for time.Now().Before(deadline) {
			if !q.IsValid() {
				return nil
			}
			time.Sleep(time.Millisecond)
		}
		if strings.TrimSpace(q.String()) == "" {
			return nil
		}
		q.Add(results.Item{ID: "quicktrans/copy", Text: strings.ToUpper(q.String()), Subtext: "To English"})
		return nil
	}
}

func TestSessionSupersedesEarlierQueries(t *testing.T) {
	var out bytes.Buffer
	s := &Session{Trigger: "tr ", JSON: true, Handler: echoHandler(200 * time.Millisecond), Out: &out}

	input := strings.Join([]string{
		"tr h",
		"tr he",
		"tr hello",
		"something else",
	}, "\n")

	if err := s.Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("output lines = %q, want only the last query", lines)
	}
	var rec Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if rec.Seq != 3 || rec.Query != "hello" || len(rec.Items) != 1 || rec.Items[0].Text != "HELLO" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestSessionTextOutputAndErrors(t *testing.T) {
	var out bytes.Buffer
	var mu sync.Mutex
	calls := 0
	handler := func(ctx context.Context, q *Query) error {
		mu.Lock()
		calls++
		mu.Unlock()
		if q.String() == "fail" {
			return errors.New("backend unreachable")
		}
		q.Add(results.Item{Text: "Bonjour", Subtext: "To French"})
		return nil
	}
	s := &Session{Handler: handler, Out: &out}

	if err := s.Run(context.Background(), strings.NewReader("fail\n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := out.String(); got != "#1 error: backend unreachable\n" {
		t.Fatalf("error output = %q", got)
	}

	out.Reset()
	if err := s.Run(context.Background(), strings.NewReader("fr Hello\n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := out.String(); got != "#1 [1] Bonjour\tTo French\n" {
		t.Fatalf("text output = %q", got)
	}
	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2", calls)
	}
}

func TestSessionBlankQueryPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	s := &Session{Trigger: "tr ", JSON: true, Handler: echoHandler(0), Out: &out}

	if err := s.Run(context.Background(), strings.NewReader("tr    \n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want nothing", out.String())
	}
}

func TestSessionContextCancelInvalidatesCurrent(t *testing.T) {
	var out bytes.Buffer
	s := &Session{Trigger: "tr ", Handler: echoHandler(5 * time.Second), Out: &out}

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, pr) }()

	if _, err := pw.Write([]byte("tr hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run() did not return after cancel")
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want nothing for cancelled query", out.String())
	}
}

func TestSessionDropsErrorsOfSupersededQueries(t *testing.T) {
	var out bytes.Buffer
	handler := func(ctx context.Context, q *Query) error {
		if q.String() == "b" {
			q.Add(results.Item{Text: "B", Subtext: "To English"})
			return nil
		}
		deadline := time.Now().Add(2 * time.Second)
		for q.IsValid() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		return context.Canceled
	}
	s := &Session{Trigger: "tr ", Handler: handler, Out: &out}

	if err := s.Run(context.Background(), strings.NewReader("tr a\ntr b\n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := out.String(); got != "#2 [1] B\tTo English\n" {
		t.Fatalf("output = %q, want only query #2", got)
	}
}

// lockedBuffer lets the test read output while the session writes it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func copyHandler(cb *clipboard.Memory) Handler {
	return func(ctx context.Context, q *Query) error {
		for _, text := range []string{"eins", "zwei"} {
			text := text
			q.Add(results.Item{
				ID:      "quicktrans/copy",
				Text:    text,
				Subtext: "To German",
				Actions: []results.Action{{
					ID:  "quicktrans/copy",
					Run: func() error { return cb.WriteAll(text) },
				}},
			})
		}
		return nil
	}
}

func TestSessionCopyCommand(t *testing.T) {
	var out lockedBuffer
	cb := &clipboard.Memory{}
	s := &Session{Trigger: "tr ", Handler: copyHandler(cb), Out: &out}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), pr) }()

	if _, err := pw.Write([]byte("tr de Hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "#1 [2] zwei") {
		if time.Now().After(deadline) {
			t.Fatalf("query #1 never finished, output = %q", out.String())
		}
		time.Sleep(time.Millisecond)
	}

	commands := "!copy 1 2\n!copy 1 5\n!copy 7 1\n!copy one 1\n!copy 1\n"
	if _, err := pw.Write([]byte(commands)); err != nil {
		t.Fatalf("write: %v", err)
	}
	pw.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if cb.Text() != "zwei" {
		t.Fatalf("clipboard = %q, want zwei", cb.Text())
	}
	got := out.String()
	for _, want := range []string{
		"#1 copied 2\n",
		"#1 error: query #1 has 2 result(s), not 5\n",
		"#7 error: no finished results for query #7\n",
		"#0 error: invalid query number \"one\"\n",
		"#0 error: usage: !copy <seq> <n>\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q missing %q", got, want)
		}
	}
}

func TestSessionCopyCommandDoesNotSupersede(t *testing.T) {
	var out bytes.Buffer
	s := &Session{Trigger: "tr ", Handler: echoHandler(100 * time.Millisecond), Out: &out}

	if err := s.Run(context.Background(), strings.NewReader("tr slow\n!copy 1 1\n")); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := "#1 error: no finished results for query #1\n#1 [1] SLOW\tTo English\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestSessionCopyCommandJSON(t *testing.T) {
	var out lockedBuffer
	cb := &clipboard.Memory{}
	s := &Session{JSON: true, Handler: copyHandler(cb), Out: &out}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), pr) }()

	if _, err := pw.Write([]byte("de Hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "\n") {
		if time.Now().After(deadline) {
			t.Fatalf("query #1 never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := pw.Write([]byte("!copy 1 1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	pw.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output lines = %q, want 2", lines)
	}
	var rec Record
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if rec.Seq != 1 || rec.Copied != 1 || rec.Error != "" {
		t.Fatalf("copy record = %#v", rec)
	}
	if cb.Text() != "eins" {
		t.Fatalf("clipboard = %q, want eins", cb.Text())
	}
}
