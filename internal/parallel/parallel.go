// Package parallel runs independent export jobs with a concurrency limit and
// reports progress as they finish.
package parallel

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/agviewer/internal/ui"
)

// Result holds the outcome of a parallel task.
type Result struct {
	Name    string
	OK      bool
	Err     error
	Output  string
	Elapsed time.Duration
}

// Task is a function that runs in parallel. Output is a short description of
// what it produced, such as a file path.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Run executes tasks in parallel with the given concurrency limit and writes
// progress lines to w. Results come back in submission order. A failing task
// does not stop the others.
func Run(ctx context.Context, tasks []Task, concurrency int, w io.Writer) []Result {
	if concurrency < 1 {
		concurrency = 4
	}
	if w == nil {
		w = io.Discard
	}

	results := make([]Result, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			start := time.Now()

			var output string
			err := gctx.Err()
			if err == nil {
				output, err = task.Fn(gctx)
			}
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[i] = Result{Name: task.Name, Err: err, Output: output, Elapsed: elapsed}
				fmt.Fprintf(w, "  %s %s %s\n", ui.StatusIcon(false), task.Name, ui.Bad.Sprintf("(%v)", err))
				if output = strings.TrimSpace(output); output != "" {
					for _, line := range truncateLines(output, 5) {
						fmt.Fprintf(w, "      %s\n", ui.Subtle.Sprint(line))
					}
				}
				return nil
			}
			results[i] = Result{Name: task.Name, OK: true, Output: output, Elapsed: elapsed}
			fmt.Fprintf(w, "  %s %s %s %s\n", ui.StatusIcon(true), task.Name,
				output, ui.Subtle.Sprintf("%.1fs", elapsed.Seconds()))
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Failed counts the results that did not succeed.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}

// truncateLines splits text into lines and returns at most n lines.
func truncateLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return lines
	}
	out := lines[:n]
	out = append(out, fmt.Sprintf("... (%d more lines)", len(lines)-n))
	return out
}
