package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jinaai/internal/logging"
	"jinaai/internal/report"
)

var (
	commandKey = regexp.MustCompile(`^command(\d+)$`)
	suffixKey  = regexp.MustCompile(`^(.*?)(\d+)$`)
)

// Item is one request carved out of a batch payload.
type Item struct {
	Position int // 1-based, in suffix order
	Suffix   int
	Command  string
	Raw      map[string]any
}

// ItemResult is the settled outcome of one item.
type ItemResult struct {
	Item
	Report *report.Report
	Err    error
}

// BatchResult holds every outcome in suffix order.
type BatchResult struct {
	RequestID string
	Results   []ItemResult
}

// DetectBatch reports whether raw carries at least one command<N> key with
// N > 0.
func DetectBatch(raw map[string]any) bool {
	for key := range raw {
		if n, ok := commandSuffix(key); ok && n > 0 {
			return true
		}
	}
	return false
}

// pending is an item under construction with the raw key behind each field.
type pending struct {
	Item
	key  string
	from map[string]string
}

// SplitBatch groups keys by numeric suffix into items sorted by suffix.
// Suffixes without a command<N> key are ignored, as are keys without one.
func SplitBatch(raw map[string]any) []Item {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bySuffix := make(map[int]*pending)
	for _, k := range keys {
		n, ok := commandSuffix(k)
		if !ok || n <= 0 {
			continue
		}
		if prev, dup := bySuffix[n]; dup {
			logging.BatchDebug("Ignoring command key %q: #%d already taken by %q", k, n, prev.key)
			continue
		}
		cmd := strings.TrimSpace(fmt.Sprint(raw[k]))
		bySuffix[n] = &pending{
			Item: Item{Suffix: n, Command: cmd, Raw: map[string]any{"command": raw[k]}},
			key:  k,
			from: map[string]string{},
		}
	}

	for _, k := range keys {
		if commandKey.MatchString(k) {
			continue
		}
		m := suffixKey.FindStringSubmatch(k)
		if m == nil || m[1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		item, ok := bySuffix[n]
		if !ok {
			continue
		}
		// url01 and url1 both address #1; the first key in sorted order wins.
		if prev, taken := item.from[m[1]]; taken {
			logging.BatchDebug("Ignoring %q: %s for #%d already set by %q", k, m[1], n, prev)
			continue
		}
		item.from[m[1]] = k
		item.Raw[m[1]] = raw[k]
	}

	items := make([]Item, 0, len(bySuffix))
	for _, p := range bySuffix {
		items = append(items, p.Item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Suffix < items[j].Suffix })
	for i := range items {
		items[i].Position = i + 1
	}
	return items
}

func commandSuffix(key string) (int, bool) {
	m := commandKey.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// RunBatch executes raw as a batch. ok is false when raw is not a batch.
// Every item runs concurrently and settles; one item's failure or panic
// never affects another.
func (e *Engine) RunBatch(ctx context.Context, raw map[string]any) (*BatchResult, bool) {
	if !DetectBatch(raw) {
		return nil, false
	}
	items := SplitBatch(raw)
	logging.Batch("Detected batch input: %d keys, %d items", len(raw), len(items))
	return e.runItems(ctx, items), true
}

func (e *Engine) runItems(ctx context.Context, items []Item) *BatchResult {
	result := &BatchResult{
		RequestID: uuid.NewString(),
		Results:   make([]ItemResult, len(items)),
	}
	log := logging.WithRequestID(logging.CategoryBatch, result.RequestID).WithField("items", len(items))
	log.Info("Processing batch concurrently (limit=%d)", e.cfg.Batch.MaxConcurrency)
	timer := logging.StartTimer(logging.CategoryBatch, "batch "+result.RequestID)

	// Items always return nil; a failure is recorded in its own slot.
	var g errgroup.Group
	if limit := e.cfg.Batch.MaxConcurrency; limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			result.Results[i] = e.runItem(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	timer.Stop()
	for _, r := range result.Results {
		if r.Err != nil {
			log.WithField("suffix", r.Suffix).Error("%s failed: %v", r.Command, r.Err)
		}
	}
	log.Info("Batch settled: %d succeeded, %d failed", result.Successes(), result.Failures())
	return result
}

func (e *Engine) runItem(ctx context.Context, item Item) (res ItemResult) {
	res.Item = item
	defer func() {
		if v := recover(); v != nil {
			logging.BatchError("Item #%d (%s) panicked: %v", item.Suffix, item.Command, v)
			res.Report, res.Err = nil, recovered(v)
		}
	}()
	res.Report, res.Err = e.Dispatch(ctx, item.Raw)
	return res
}

// Successes counts items that produced a report.
func (b *BatchResult) Successes() int {
	n := 0
	for _, r := range b.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failures counts items that failed.
func (b *BatchResult) Failures() int {
	return len(b.Results) - b.Successes()
}

// Render builds the aggregate report: a summary line and one section per
// item in suffix order.
func (b *BatchResult) Render() string {
	var sb strings.Builder
	sb.WriteString("### JinaAI Batch Operation Results\n\n")
	fmt.Fprintf(&sb, "Executed %d operations: %d succeeded, %d failed.\n\n", len(b.Results), b.Successes(), b.Failures())

	sections := make([]string, len(b.Results))
	for i, r := range b.Results {
		var s strings.Builder
		fmt.Fprintf(&s, "#### Operation %d: %s (#%d)\n", r.Position, r.Command, r.Suffix)
		if r.Err == nil {
			s.WriteString("**Status:** ✅ Success\n")
			s.WriteString(r.Report.Render())
		} else {
			s.WriteString("**Status:** ❌ Failed\n")
			s.WriteString("**Error:** " + r.Err.Error())
		}
		sections[i] = s.String()
	}
	sb.WriteString(strings.Join(sections, "\n\n---\n"))
	return sb.String()
}
