package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"basintab/internal/config"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client invokes the external areal-statistics engine as a subprocess:
//
//	<binary> <extra_args...> <script> <polygon> <raster[,raster...]> <output> <args...>
//
// The engine writes a delimited table with columns
// catchment_id,value,valid_fraction to the output path; exit code 0 plus a
// parseable, non-empty output file signal success. Output files live in a
// per-invocation temp directory removed on every exit path.
type Client struct {
	binary    string
	script    string
	extraArgs []string
	timeout   time.Duration
	tempDir   string
	exec      Executor
}

// New constructs an engine client from configuration. tempDir is the scratch
// root for per-invocation output directories.
func New(cfg config.Engine, tempDir string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Binary) == "" {
		return nil, errors.New("engine binary required")
	}
	if strings.TrimSpace(cfg.Script) == "" {
		return nil, errors.New("engine script required")
	}
	client := &Client{
		binary:    cfg.Binary,
		script:    cfg.Script,
		extraArgs: append([]string{}, cfg.ExtraArgs...),
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		tempDir:   tempDir,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Extract runs the engine for one scene and parses its output.
func (c *Client) Extract(ctx context.Context, rasterPaths []string, polygonPath string, args []string) (Result, error) {
	if len(rasterPaths) == 0 {
		return Result{}, fmt.Errorf("%w: no raster files", ErrInvocation)
	}
	if strings.TrimSpace(polygonPath) == "" {
		return Result{}, fmt.Errorf("%w: polygon catalog path required", ErrInvocation)
	}

	scratch, err := os.MkdirTemp(c.tempDir, "extract-*")
	if err != nil {
		return Result{}, fmt.Errorf("%w: create scratch directory: %v", ErrInvocation, err)
	}
	defer os.RemoveAll(scratch)

	outputPath := filepath.Join(scratch, "result.csv")

	cmdArgs := append([]string{}, c.extraArgs...)
	cmdArgs = append(cmdArgs, c.script, polygonPath, strings.Join(rasterPaths, ","), outputPath)
	cmdArgs = append(cmdArgs, args...)

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.exec.Run(runCtx, c.binary, cmdArgs, nil); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvocation, err)
	}

	return parseOutput(outputPath)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
