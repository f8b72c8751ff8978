package capture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"launchpad/internal/utils"
)

// Capturer runs the ffmpeg desktop grab and streams its output to OnData.
type Capturer struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	running bool
	exited  chan struct{}

	OnData func(data []byte)
	OnExit func(err error)
}

func NewCapturer(cfg Config, logger *slog.Logger) (*Capturer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Capturer{config: cfg, logger: logger}, nil
}

func (c *Capturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capturer already running")
	}

	args := NewFFmpegCommandBuilder(c.config).BuildArgs()
	c.cmd = utils.Command(c.config.FFmpegPath, args...)
	c.stderr.Reset()
	c.cmd.Stderr = &c.stderr

	var err error
	c.stdout, err = c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	c.logger.Info("starting ffmpeg", "command", c.config.FFmpegPath+" "+strings.Join(args, " "))

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	c.running = true
	c.exited = make(chan struct{})
	go c.readLoop(c.cmd, c.stdout, c.exited)
	return nil
}

func (c *Capturer) readLoop(cmd *exec.Cmd, stdout io.Reader, exited chan struct{}) {
	defer close(exited)

	reader := bufio.NewReaderSize(stdout, 4*1024*1024)
	buf := make([]byte, 1024*1024)
	for {
		n, err := reader.Read(buf)
		if n > 0 && c.OnData != nil {
			// OnData copies before returning
			c.OnData(buf[:n])
		}
		if err != nil {
			break
		}
	}

	waitErr := cmd.Wait()

	c.mu.Lock()
	wasRunning := c.running
	c.running = false
	stderr := strings.TrimSpace(c.stderr.String())
	c.mu.Unlock()

	// a Stop kills the process on purpose
	if wasRunning {
		if waitErr != nil && stderr != "" {
			waitErr = fmt.Errorf("%w: %s", waitErr, stderr)
		}
		c.logger.Warn("ffmpeg exited unexpectedly", "error", waitErr)
		if c.OnExit != nil {
			c.OnExit(waitErr)
		}
	}
}

func (c *Capturer) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	cmd := c.cmd
	exited := c.exited
	c.mu.Unlock()

	if cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("failed to kill ffmpeg: %w", err)
		}
	}
	<-exited
	return nil
}

func (c *Capturer) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Capturer) Config() Config {
	return c.config
}
