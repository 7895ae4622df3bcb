package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/result"
	"github.com/poiesic/lexidict/search"
	"github.com/poiesic/lexidict/storage"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrSearcherRequired is returned when a searcher is not provided.
var ErrSearcherRequired = errors.New("searcher required")

// Searcher runs a query and assembles its result.
type Searcher interface {
	Search(ctx context.Context, q search.Query, view core.ViewMode) (*result.Result, error)
}

// Server answers msgpack lookup requests.
type Server struct {
	searcher Searcher
	reader   io.Reader
	writer   io.Writer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithIO sets the request stream and the response stream.
// Default is os.Stdin and os.Stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a new server over searcher.
func New(searcher Searcher, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		searcher: searcher,
		reader:   os.Stdin,
		writer:   os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Serve handles requests until the input ends, ctx is canceled, or a frame
// cannot be decoded. A clean end of input returns nil.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug("starting server")

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	dec.SetCustomStructTag("json")

	out := bufio.NewWriter(s.writer)
	enc := msgpack.NewEncoder(out)
	enc.SetCustomStructTag("json")

	served := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("input closed", "served", served)
				return nil
			}
			s.logger.Error("failed to decode request", "err", err)
			resp := Response{Error: "undecodable request", Code: CodeBadRequest}
			if encErr := s.send(enc, out, &resp); encErr != nil {
				return encErr
			}
			return fmt.Errorf("failed to decode request: %w", err)
		}

		resp := s.Handle(ctx, &req)
		if err := s.send(enc, out, resp); err != nil {
			return err
		}
		served++
	}
}

func (s *Server) send(enc *msgpack.Encoder, out *bufio.Writer, resp *Response) error {
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// Handle answers a single request.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	start := time.Now()
	resp := &Response{ID: req.ID}

	q, view, err := parseRequest(req)
	if err == nil {
		var res *result.Result
		res, err = s.searcher.Search(ctx, q, view)
		if err == nil {
			resp.Items = res.Items
			resp.View = res.View
			resp.Search = res.Search
			resp.Tier = res.Tier
		}
	}
	if err != nil {
		resp.Error = err.Error()
		resp.Code = errorCode(err)
		s.logger.Warn("request failed", "id", req.ID, "query", req.Query, "err", err)
	}

	resp.TimeTaken = time.Since(start).Milliseconds()
	return resp
}

func parseRequest(req *Request) (search.Query, core.ViewMode, error) {
	index, err := core.ParseIndexMode(req.Index)
	if err != nil {
		return search.Query{}, 0, err
	}
	mode, err := core.ParseSearchMode(req.Search)
	if err != nil {
		return search.Query{}, 0, err
	}
	view, err := core.ParseViewMode(req.View)
	if err != nil {
		return search.Query{}, 0, err
	}
	if req.Limit < 0 {
		return search.Query{}, 0, fmt.Errorf("%w: negative limit %d", core.ErrInvalidQuery, req.Limit)
	}
	return search.Query{Text: req.Query, Index: index, Search: mode, Limit: req.Limit}, view, nil
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidMode), errors.Is(err, core.ErrInvalidQuery):
		return CodeBadRequest
	case errors.Is(err, storage.ErrStoreUnavailable):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
