// Command distcheck verifies that forecast samples are valid permutations of
// the summary catalog and that every ordering is drawn with roughly equal
// frequency. It samples in-process by default, or a running service when -url
// is given.
//
// Usage:
//
//	go run ./cmd/distcheck -trials 14400 -strategy keyed
//	go run ./cmd/distcheck -url http://localhost:8080/weatherforecast
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/forecast-summary-service/internal/domain"
	"github.com/couchcryptid/forecast-summary-service/internal/sampler"
)

// minPerOrdering is the expected draws per ordering below which the coverage
// phase is skipped. At 20 a correct sampler misses some ordering with
// probability about 720*e^-20.
const minPerOrdering = 20

// defaultTrials gives every ordering of a six-entry catalog minPerOrdering
// expected draws.
const defaultTrials = 14400

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped string
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	trials   int
	strategy string
	url      string
	alpha    float64
	seed     uint64
}

// drawFunc returns one sample of the given size as catalog strings.
type drawFunc func(ctx context.Context, count int) ([]string, error)

func main() {
	var opts options
	flag.IntVar(&opts.trials, "trials", defaultTrials, "number of full-catalog samples to draw")
	flag.StringVar(&opts.strategy, "strategy", "shuffle", "in-process sampling strategy: shuffle or keyed")
	flag.StringVar(&opts.url, "url", "", "forecast endpoint to sample instead of sampling in-process")
	flag.Float64Var(&opts.alpha, "alpha", 1e-6, "minimum acceptable chi-square p-value")
	flag.Uint64Var(&opts.seed, "seed", 0, "seed for in-process sampling (0 uses the shared source)")
	flag.Parse()

	if opts.trials <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(context.Background(), opts, os.Stdout))
}

func run(ctx context.Context, opts options, out io.Writer) int {
	catalog := domain.DefaultSummaries

	draw, err := newDrawFunc(opts, catalog.Items())
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "=== Forecast Sample Distribution Check ===")
	fmt.Fprintf(out, "Source: %s\n", describe(opts))
	fmt.Fprintln(out)

	counts, validity := checkValidity(ctx, draw, catalog, opts.trials)
	stat, pValue := sampler.ChiSquare(counts)

	phases := []*phase{
		validity,
		checkCoverage(counts, opts.trials),
		checkUniformity(stat, pValue, opts.alpha, len(counts)),
		checkInvalidCounts(ctx, draw, catalog.Len()),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped != "":
			status = "SKIP (" + p.skipped + ")"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Trials: %d, orderings seen: %d/%d, chi-square: %.2f, p-value: %.4g\n",
		opts.trials, distinct, len(counts), stat, pValue)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 10 {
				fmt.Fprintf(out, "  ... and %d more\n", len(p.errors)-10)
				break
			}
			fmt.Fprintf(out, "  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func describe(opts options) string {
	if opts.url != "" {
		return opts.url
	}
	if opts.seed != 0 {
		return fmt.Sprintf("in-process (%s, seed %d)", opts.strategy, opts.seed)
	}
	return fmt.Sprintf("in-process (%s)", opts.strategy)
}

func newDrawFunc(opts options, items []string) (drawFunc, error) {
	if opts.url != "" {
		return httpDraw(opts.url), nil
	}

	strategy, err := sampler.ParseStrategy(opts.strategy)
	if err != nil {
		return nil, err
	}
	var src sampler.Source
	if opts.seed != 0 {
		src = sampler.NewSource(opts.seed)
	}
	return func(_ context.Context, count int) ([]string, error) {
		return sampler.Sample(items, count, sampler.WithStrategy(strategy), sampler.WithSource(src))
	}, nil
}

// errBadRequest marks a 400 response from the service.
var errBadRequest = errors.New("bad request")

func httpDraw(endpoint string) drawFunc {
	client := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context, count int) ([]string, error) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		q := u.Query()
		q.Set("count", fmt.Sprint(count))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusBadRequest:
			return nil, errBadRequest
		default:
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var summaries []string
		if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return summaries, nil
	}
}

// checkValidity draws trials full samples, verifying each is a permutation of
// the catalog, and tallies orderings by rank. Tallying stops at the first
// invalid sample.
func checkValidity(ctx context.Context, draw drawFunc, catalog domain.Catalog, trials int) ([]int, *phase) {
	p := &phase{name: "Samples are catalog permutations"}

	counts, err := sampler.RunTrials(trials, catalog.Len(), func() ([]int, error) {
		got, err := draw(ctx, catalog.Len())
		if err != nil {
			return nil, err
		}
		perm := make([]int, len(got))
		for i, s := range got {
			idx, ok := catalog.Index(s)
			if !ok {
				return nil, fmt.Errorf("%q is not in the catalog", s)
			}
			perm[i] = idx
		}
		return perm, nil
	})
	if err != nil {
		p.errorf("%v", err)
		return make([]int, sampler.Factorial(catalog.Len())), p
	}
	return counts, p
}

func checkCoverage(counts []int, trials int) *phase {
	p := &phase{name: "Every ordering observed"}
	if trials < minPerOrdering*len(counts) {
		p.skipped = fmt.Sprintf("needs %d trials", minPerOrdering*len(counts))
		return p
	}
	for rank, c := range counts {
		if c == 0 {
			p.errorf("ordering %d never drawn", rank)
		}
	}
	return p
}

func checkUniformity(stat, pValue, alpha float64, orderings int) *phase {
	p := &phase{name: "Uniform distribution (chi-square)"}
	if pValue < alpha {
		p.errorf("chi-square %.2f with %d degrees of freedom: p=%.4g < alpha=%.4g",
			stat, orderings-1, pValue, alpha)
	}
	return p
}

func checkInvalidCounts(ctx context.Context, draw drawFunc, size int) *phase {
	p := &phase{name: "Out-of-range counts rejected"}
	for _, n := range []int{-1, size + 1} {
		_, err := draw(ctx, n)
		switch {
		case err == nil:
			p.errorf("count %d: expected rejection, got a sample", n)
		case errors.Is(err, sampler.ErrInvalidArgument), errors.Is(err, errBadRequest):
		default:
			p.errorf("count %d: unexpected error %v", n, err)
		}
	}
	return p
}
