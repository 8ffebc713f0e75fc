package query

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"daapshare/internal/logging"
	"daapshare/internal/services"
)

const (
	// QueryPrefix introduces a statement on the request stream.
	QueryPrefix = "SQL QUERY: "
	// EndSentinel terminates a result on the response stream.
	EndSentinel = "**** END SQL ****"
)

// PipeExecutor sends statements to a host process and reads results back one
// value per line. Queries are serialized; the protocol has no request ids.
type PipeExecutor struct {
	mu     sync.Mutex
	w      io.Writer
	r      *bufio.Reader
	logger *slog.Logger
	broken error
}

// NewPipeExecutor returns an executor writing statements to w and reading
// results from r.
func NewPipeExecutor(w io.Writer, r io.Reader, logger *slog.Logger) *PipeExecutor {
	return &PipeExecutor{
		w:      w,
		r:      bufio.NewReader(r),
		logger: logging.NewComponentLogger(logger, "query"),
	}
}

// Query writes the statement and collects lines until EndSentinel. Once the
// statement is written the result is always read through to the sentinel,
// even if ctx is cancelled, so the next statement starts in step. A stream
// that ends or fails before the sentinel breaks the executor and every later
// Query fails.
func (p *PipeExecutor) Query(ctx context.Context, statement string) ([]string, error) {
	if strings.ContainsAny(statement, "\r\n") {
		return nil, services.Wrap(services.ErrValidation, "query", "pipe", "statement spans lines", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.broken != nil {
		return nil, services.Wrap(services.ErrTransient, "query", "pipe", "stream out of step", p.broken)
	}

	p.logger.Debug("pipe query", logging.String("statement", statement))
	if _, err := fmt.Fprintf(p.w, "%s%s\n", QueryPrefix, statement); err != nil {
		p.broken = err
		return nil, services.Wrap(services.ErrTransient, "query", "pipe", "write statement", err)
	}

	out, err := p.readResult()
	if err != nil {
		p.broken = err
		p.logger.Warn("pipe stream lost", logging.String("statement", statement), logging.Error(err))
		return nil, services.Wrap(services.ErrTransient, "query", "pipe", "read result", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PipeExecutor) readResult() ([]string, error) {
	var out []string
	for {
		line, err := p.r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == EndSentinel {
			return out, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		out = append(out, trimmed)
	}
}
