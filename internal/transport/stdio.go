package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/instrumentation"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

const (
	// DefaultStdioConcurrency bounds how many lines are processed at once.
	DefaultStdioConcurrency = 8

	// DefaultMaxMessageBytes caps a single message on either transport.
	DefaultMaxMessageBytes = 4 << 20
)

// StdioServer serves newline-delimited JSON-RPC over a pair of streams.
type StdioServer struct {
	handler     MessageHandler
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	concurrency int
	maxLine     int
}

// StdioOption configures a StdioServer.
type StdioOption func(*StdioServer)

// WithStdioLogger sets the logger. Callers must not point it at the output stream.
func WithStdioLogger(logger *slog.Logger) StdioOption {
	return func(s *StdioServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdioMetrics records session metrics.
func WithStdioMetrics(m *instrumentation.Metrics) StdioOption {
	return func(s *StdioServer) { s.metrics = m }
}

// WithStdioConcurrency sets the number of in-flight messages. Values below 1
// mean one at a time.
func WithStdioConcurrency(n int) StdioOption {
	return func(s *StdioServer) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithMaxLineBytes sets the longest accepted input line.
func WithMaxLineBytes(n int) StdioOption {
	return func(s *StdioServer) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// NewStdioServer returns a server dispatching each line to h.
func NewStdioServer(h MessageHandler, opts ...StdioOption) *StdioServer {
	s := &StdioServer{
		handler:     h,
		logger:      logging.Discard(),
		concurrency: DefaultStdioConcurrency,
		maxLine:     DefaultMaxMessageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads messages from in until EOF or ctx is done and writes responses
// to out, one per line. Responses may be written out of order when more than
// one message is in flight; clients correlate them by id. A line longer than
// the cap is skipped and answered with an invalid-request error.
//
// Serve returns nil on EOF and on cancellation.
func (s *StdioServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	sess := newSession(ctx, TransportStdio, s.logger, s.metrics)
	defer sess.Close()

	r := bufio.NewReaderSize(in, min(64*1024, s.maxLine))

	frames := make(chan frame)
	readErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			f, err := readFrame(r, s.maxLine)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case frames <- f:
			case <-sess.ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(sess.ctx)
	g.SetLimit(s.concurrency)

	var mu sync.Mutex
	write := func(msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		line := make([]byte, 0, len(msg)+1)
		line = append(append(line, msg...), '\n')
		if _, err := out.Write(line); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		return nil
	}

loop:
	for {
		select {
		case <-gctx.Done():
			break loop
		case f, ok := <-frames:
			if !ok {
				break loop
			}
			if f.tooLong {
				sess.logger.Warn("Dropped oversized message", slog.Int("limit", s.maxLine))
				g.Go(func() error { return write(bodyTooLargeBody) })
				continue
			}
			if len(bytes.TrimSpace(f.data)) == 0 {
				continue
			}
			g.Go(func() error {
				resp, err := sess.handle(gctx, s.handler, f.data)
				if err != nil {
					sess.logger.Error("Failed to handle message", logging.Err(err))
					resp = internalErrorBody
				}
				if resp == nil {
					return nil
				}
				return write(resp)
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	select {
	case err := <-readErr:
		return fmt.Errorf("read input: %w", err)
	default:
	}
	return nil
}

// frame is one input line without its terminator.
type frame struct {
	data    []byte
	tooLong bool
}

// readFrame reads up to the next newline. A line longer than limit is consumed
// in full but returned with tooLong set and no data. A final line without a
// newline is still returned; io.EOF is reported only once nothing is left.
func readFrame(r *bufio.Reader, limit int) (frame, error) {
	var f frame
	for {
		chunk, err := r.ReadSlice('\n')
		if !f.tooLong {
			f.data = append(f.data, chunk...)
			if len(bytes.TrimRight(f.data, "\r\n")) > limit {
				f = frame{tooLong: true}
			}
		}

		switch {
		case err == nil:
			f.data = bytes.TrimSuffix(bytes.TrimSuffix(f.data, []byte("\n")), []byte("\r"))
			return f, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (f.tooLong || len(f.data) > 0):
			return f, nil
		default:
			return f, err
		}
	}
}
