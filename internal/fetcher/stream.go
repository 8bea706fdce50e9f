package fetcher

import (
	"context"
	"net/http"
	"os"

	"github.com/quantmind-br/archivepuller/internal/domain"
	"github.com/quantmind-br/archivepuller/internal/utils"
)

// Progress lines shared by all strategies
const (
	MsgDownloadStart = "Downloading archive ..."
	MsgDownloadDone  = "Archive Downloaded...."
)

// HTTPStream is the default strategy: one streaming GET appended to the
// destination file.
type HTTPStream struct {
	client    *http.Client
	userAgent string
	logger    *utils.Logger
}

// HTTPStreamOptions contains options for creating an HTTPStream
type HTTPStreamOptions struct {
	Client    *http.Client
	UserAgent string
	Logger    *utils.Logger
}

// NewHTTPStream creates a new HTTPStream
func NewHTTPStream(opts HTTPStreamOptions) *HTTPStream {
	client := opts.Client
	if client == nil {
		client = NewHTTPClient(DefaultClientOptions())
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &HTTPStream{
		client:    client,
		userAgent: opts.UserAgent,
		logger:    logger.WithComponent("fetcher"),
	}
}

var _ domain.FetchStrategy = (*HTTPStream)(nil)

// Name returns the strategy name
func (s *HTTPStream) Name() string {
	return "http"
}

// Fetch downloads req.URL into req.Destination
func (s *HTTPStream) Fetch(ctx context.Context, req domain.FetchRequest, emit domain.LineFunc) (*domain.FetchResult, error) {
	if emit == nil {
		emit = func(string) {}
	}

	emit(MsgDownloadStart)
	s.logger.Debug().Str("url", req.URL).Str("dest", req.Destination).Msg("Downloading archive")

	resp, err := get(ctx, s.client, req.URL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	n, err := writeBody(req, resp, emit)
	if err != nil {
		return nil, err
	}

	emit(MsgDownloadDone)
	s.logger.Debug().Int64("bytes", n).Msg("Archive downloaded")
	return &domain.FetchResult{Path: req.Destination, Header: resp.Header.Clone(), Bytes: n}, nil
}

// writeBody appends the response body to the destination file
func writeBody(req domain.FetchRequest, resp *http.Response, emit domain.LineFunc) (int64, error) {
	f, err := os.OpenFile(req.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, domain.NewDownloadError(req.URL, 0, err)
	}

	n, err := copyChunks(f, resp.Body, emit)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, domain.NewDownloadError(req.URL, resp.StatusCode, err)
	}
	return n, nil
}
