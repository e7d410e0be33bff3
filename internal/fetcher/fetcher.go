// Package fetcher downloads the published reference datasets (FHFA HPI
// files, HUD crosswalks, Census attribute tables) into the local data
// directory. It is used by the fetch command, never by the startup load.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options configures both fetcher implementations.
type Options struct {
	UserAgent  string
	TimeoutSec int
	MaxRetries int
}

// saveTo streams r into path through a .part temporary name, renaming only
// after a complete copy. The startup load treats any present dataset file as
// complete, so a truncated download must never land under the final name.
func saveTo(path string, r io.Reader) (int64, error) {
	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create %s", tmp)
	}

	n, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmp)
		return n, eris.Wrapf(copyErr, "fetcher: write %s", tmp)
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return n, eris.Wrapf(closeErr, "fetcher: close %s", tmp)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return n, eris.Wrapf(err, "fetcher: rename %s", tmp)
	}
	return n, nil
}

// ForURL returns the fetcher matching the URL scheme: FTP for ftp://
// (several federal mirrors still publish over FTP), HTTP otherwise.
func ForURL(rawURL string, opts Options) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	switch u.Scheme {
	case "ftp":
		return NewFTPFetcher(opts), nil
	case "http", "https":
		return NewHTTPFetcher(opts), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}
