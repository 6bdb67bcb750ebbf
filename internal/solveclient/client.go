// Package solveclient implements a demo puzzle-solving client: it issues
// a puzzle from a running server, brute-forces the required sub-solutions
// client-side, and submits them for verification. It generalizes the
// teacher's internal/client TCP challenge/response flow to this service's
// HTTP/JSON transport.
package solveclient

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/fcaptcha/fcaptcha-go/internal/codec"
	"github.com/fcaptcha/fcaptcha-go/internal/solver"
)

// Config holds client configuration.
type Config struct {
	BaseURL        string
	Sitekey        string
	Secret         string
	ConnectTimeout time.Duration
	SolveTimeout   time.Duration
}

// Client issues and solves puzzles against a running fcaptcha server.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.ConnectTimeout},
	}
}

type buildPuzzleResponse struct {
	Data struct {
		Puzzle string `json:"puzzle"`
	} `json:"data"`
}

type verifyResponse struct {
	Success bool    `json:"success"`
	Errors  *string `json:"errors"`
}

// fetchPuzzle retries /build-puzzle with exponential backoff, tolerating
// transient connection failures while the server is starting up.
func (c *Client) fetchPuzzle(ctx context.Context) (string, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	url := fmt.Sprintf("%s/build-puzzle?sitekey=%s", c.cfg.BaseURL, c.cfg.Sitekey)

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}

		resp, err := c.http.Do(req)
		if err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				var out buildPuzzleResponse
				if decErr := json.NewDecoder(resp.Body).Decode(&out); decErr != nil {
					return "", fmt.Errorf("decode puzzle response: %w", decErr)
				}
				return out.Data.Puzzle, nil
			}
			err = fmt.Errorf("build-puzzle returned status %d", resp.StatusCode)
		}

		if attempt >= 5 {
			return "", fmt.Errorf("failed to fetch puzzle after %d attempts: %w", attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}

// Solve fetches a puzzle, brute-forces its solutions, submits the result,
// and returns whether the server accepted it.
func (c *Client) Solve(ctx context.Context) (bool, error) {
	puzzleStr, err := c.fetchPuzzle(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch puzzle: %w", err)
	}

	parts := strings.Split(puzzleStr, ".")
	if len(parts) != 2 {
		return false, fmt.Errorf("unexpected puzzle format: %d parts", len(parts))
	}
	sigHex, headerB64 := parts[0], parts[1]

	header, rawHeader, err := codec.DecodeHeaderB64(headerB64)
	if err != nil {
		return false, fmt.Errorf("decode header: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, c.cfg.SolveTimeout)
	defer cancel()

	solutions, err := solveSolutions(solveCtx, rawHeader, int(header.SolutionsCount), header.Difficulty)
	if err != nil {
		return false, fmt.Errorf("solve: %w", err)
	}

	solutionStr := sigHex + "." + headerB64 + "." + codec.Base64Encode(solutions) + "." + codec.Base64Encode(nil)

	return c.submit(ctx, solutionStr)
}

func (c *Client) submit(ctx context.Context, solutionStr string) (bool, error) {
	body, err := json.Marshal(map[string]string{
		"solution": solutionStr,
		"secret":   c.cfg.Secret,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/verify-puzzle-result", strings.NewReader(string(body)))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	var out verifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}
	return out.Success, nil
}

// solveSolutions finds the overlapping stride-of-1 solutions buffer
// described in the verifier's step 8: an (n+7)-byte buffer where each
// 8-byte window [i, i+8) independently satisfies the Blake2b threshold
// for difficulty. The first window has 8 free bytes and is searched in
// parallel across GOMAXPROCS workers scanning disjoint counter ranges;
// every subsequent window shares 7 bytes with its predecessor, leaving a
// single free byte that is searched sequentially.
func solveSolutions(ctx context.Context, header [codec.HeaderSize]byte, n int, difficulty uint8) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n-1+solver.SolutionSize)

	first, err := solveFirstWindow(ctx, header, difficulty)
	if err != nil {
		return nil, err
	}
	copy(buf[0:solver.SolutionSize], first)

	for i := 1; i < n; i++ {
		found := false
		for b := 0; b < 256; b++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			buf[i+solver.SolutionSize-1] = byte(b)
			if solver.Check(header[:], buf[i:i+solver.SolutionSize], difficulty) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no solution found for sub-solution %d", i)
		}
	}

	return buf, nil
}

func solveFirstWindow(ctx context.Context, header [codec.HeaderSize]byte, difficulty uint8) ([]byte, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	type result struct {
		solution []byte
	}

	resultCh := make(chan result, 1)
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start uint64) {
			defer wg.Done()
			candidate := make([]byte, solver.SolutionSize)
			for nonce := start; ; nonce += uint64(workers) {
				select {
				case <-workerCtx.Done():
					return
				default:
				}
				binary.BigEndian.PutUint64(candidate, nonce)
				if solver.Check(header[:], candidate, difficulty) {
					select {
					case resultCh <- result{solution: append([]byte(nil), candidate...)}:
						cancel()
					default:
					}
					return
				}
			}
		}(uint64(w))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case res := <-resultCh:
		return res.solution, nil
	case <-done:
		select {
		case res := <-resultCh:
			return res.solution, nil
		default:
			return nil, fmt.Errorf("no solution found within search space")
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
