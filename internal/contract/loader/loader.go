package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

// Loader implements pkgcontract.Loader by delegating to file, fs.FS or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ pkgcontract.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgcontract.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from src and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgcontract.Source) (pkgcontract.Document, error) {
	if src == nil {
		return pkgcontract.Document{}, errors.New("contract loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgcontract.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case pkgcontract.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case pkgcontract.SourceKindURL:
		if !l.allowHTTP {
			return pkgcontract.Document{}, errors.New("contract loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location())
	default:
		err = errors.New("contract loader: unsupported source kind")
	}
	if err != nil {
		return pkgcontract.Document{}, err
	}

	return pkgcontract.NewDocument(src, data)
}
