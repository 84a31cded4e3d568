package g2p

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCommandTimeout bounds a single phonemizer run.
const DefaultCommandTimeout = 5 * time.Second

// Command runs an external phonemizer once per word. The word is written to
// the process's stdin and the whitespace-separated fields of its stdout are
// the phonemes.
type Command struct {
	binary  string
	args    []string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewCommand checks that binary exists and returns an adapter for it.
// perSecond limits process spawns; zero or less means unlimited.
func NewCommand(binary string, args []string, timeout time.Duration, perSecond float64) (*Command, error) {
	if binary == "" {
		return nil, fmt.Errorf("%w: no phonemizer command configured", ErrInvalidConfig)
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: binary '%s' not found in PATH: %v", ErrUnavailable, binary, err)
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}

	return &Command{
		binary:  path,
		args:    args,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// Name implements Adapter.
func (c *Command) Name() string {
	return BackendCommand
}

// Phonemes implements Adapter.
func (c *Command) Phonemes(ctx context.Context, word string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.run(ctx, word)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(strings.ToUpper(string(out)))
	if len(fields) == 0 {
		return nil, unknownWord(BackendCommand, word)
	}
	return fields, nil
}

func (c *Command) run(ctx context.Context, word string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, c.args...)

	// Stdin has to be in place before Start.
	cmd.Stdin = strings.NewReader(word + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &Error{Backend: BackendCommand, Word: word, Code: CodeUnavailable, Err: err}
	}
	err := cmd.Wait()

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{
				Backend: BackendCommand,
				Word:    word,
				Code:    CodeTimeout,
				Err:     fmt.Errorf("phonemizer timed out after %v", c.timeout),
			}
		}
		return nil, ctx.Err()
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w\nstderr: %s", err, msg)
		}
		return nil, &Error{Backend: BackendCommand, Word: word, Code: CodeBadOutput, Err: err}
	}
	return stdout.Bytes(), nil
}
