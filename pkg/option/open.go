package option

import (
	"time"

	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

type OpenOptions struct {
	// Fs is used to open the image and descriptor files.
	Fs afero.Fs
	// UseMmap maps the image into memory instead of reading it through Fs. Only valid for OS paths.
	UseMmap bool
	// NameEncoding decodes volume labels and file identifiers. nil means raw bytes.
	NameEncoding encoding.Encoding
	// StripVersionInfo removes the ";<digits>" suffix from file identifiers.
	StripVersionInfo bool
	// WatchDebounce delays an image reload after the watched file stops changing.
	WatchDebounce              time.Duration
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// NewOpenOptions returns the defaults with opts applied.
func NewOpenOptions(opts ...OpenOption) *OpenOptions {
	o := &OpenOptions{
		Fs:                         afero.NewOsFs(),
		NameEncoding:               japanese.ShiftJIS,
		StripVersionInfo:           true,
		WatchDebounce:              500 * time.Millisecond,
		ExtractionProgressCallback: func(string, int64, int64, int, int) {},
		Logger:                     logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logging.DefaultLogger()
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.ExtractionProgressCallback == nil {
		o.ExtractionProgressCallback = func(string, int64, int64, int, int) {}
	}
	return o
}

// WithExtractionProgress sets a progress callback function that will be called with progress updates.
// Parameters:
// - currentFilename: The name of the file currently being processed.
// - bytesTransferred: The number of bytes transferred so far for the current file.
// - totalBytes: The total number of bytes to be transferred for the current file.
// - currentFileNumber: The index of the current file being processed.
// - totalFileCount: The total number of files to be processed.
func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

func WithFs(fs afero.Fs) OpenOption {
	return func(o *OpenOptions) {
		o.Fs = fs
	}
}

func WithMmap(useMmap bool) OpenOption {
	return func(o *OpenOptions) {
		o.UseMmap = useMmap
	}
}

func WithNameEncoding(enc encoding.Encoding) OpenOption {
	return func(o *OpenOptions) {
		o.NameEncoding = enc
	}
}

func WithStripVersionInfo(stripVersionInfo bool) OpenOption {
	return func(o *OpenOptions) {
		o.StripVersionInfo = stripVersionInfo
	}
}

func WithWatchDebounce(d time.Duration) OpenOption {
	return func(o *OpenOptions) {
		o.WatchDebounce = d
	}
}
