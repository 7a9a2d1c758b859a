package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/client-release/internal/archive"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/fsutil"
	"github.com/oshokin/client-release/internal/logger"
)

// WorkspaceOrg is the source path of tool repositories inside the workspace.
const WorkspaceOrg = "github.com/gamingchannel"

var (
	errBadHTTPStatus     = errors.New("unexpected http status")
	errBinaryNotInBundle = errors.New("binary missing from release archive")
)

// Binary identifies a tool release.
type Binary struct {
	// Repo is the repository name the tool is released from, e.g. "cli".
	Repo string
	// Name is the executable base name without extension, e.g. "gcpush".
	Name string
	// Tag is the release tag, e.g. "v0.4.0".
	Tag string
}

// Options configures a Fetcher.
type Options struct {
	// Platform selects the release asset and executable extension.
	Platform build.Platform
	// Development copies binaries from Workspace instead of downloading.
	Development bool
	// Workspace is the local source root for development binaries.
	Workspace string
	// ReleaseBaseURL is the release host, e.g. https://github.com/gamingchannel.
	ReleaseBaseURL string
	// DestDir receives the installed binaries.
	DestDir string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// ShowProgress renders a download progress bar.
	ShowProgress bool
}

// Fetcher installs tool binaries into the build directory.
type Fetcher struct {
	opts Options
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Fetcher{opts: opts}
}

// Destination is where Fetch installs bin.
func (f *Fetcher) Destination(bin Binary) string {
	return filepath.Join(f.opts.DestDir, f.opts.Platform.ExecutableName(bin.Name))
}

// Fetch installs bin into DestDir and returns its path.
func (f *Fetcher) Fetch(ctx context.Context, bin Binary) (string, error) {
	ctx = logger.WithFields(ctx, "binary", bin.Name, "tag", bin.Tag)
	dest := f.Destination(bin)

	if f.opts.Development {
		src := filepath.Join(f.opts.Workspace, "src", filepath.FromSlash(WorkspaceOrg), bin.Repo,
			f.opts.Platform.ExecutableName(bin.Name))

		logger.InfoKV(ctx, "Copying development binary", "from", src, "to", dest)

		if err := fsutil.CopyExecutable(src, dest, ""); err != nil {
			return "", err
		}

		return dest, nil
	}

	if err := f.download(ctx, bin, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// ReleaseURL is the download location of bin's platform zip.
func (f *Fetcher) ReleaseURL(bin Binary) (string, error) {
	base, err := url.Parse(f.opts.ReleaseBaseURL)
	if err != nil {
		return "", fmt.Errorf("parse release base url: %w", err)
	}

	base.Path = path.Join(base.Path, bin.Repo, "releases", "download", bin.Tag, f.opts.Platform.ReleaseAssetName())

	return base.String(), nil
}

// download fetches the release zip, extracts it and installs the binary.
func (f *Fetcher) download(ctx context.Context, bin Binary, dest string) error {
	releaseURL, err := f.ReleaseURL(bin)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(f.opts.DestDir, fsutil.DirMode); err != nil {
		return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
	}

	workDir, err := os.MkdirTemp("", "client-release-"+bin.Name+"-")
	if err != nil {
		return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
	}

	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	zipPath := filepath.Join(workDir, f.opts.Platform.ReleaseAssetName())

	logger.InfoKV(ctx, "Downloading release archive", "url", releaseURL)

	size, err := f.downloadFile(ctx, releaseURL, zipPath)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Downloaded release archive", "size", humanize.Bytes(uint64(size))) //nolint:gosec // Sizes are non-negative.

	extractDir := filepath.Join(workDir, "extracted")

	files, err := archive.ExtractZip(zipPath, extractDir)
	if err != nil {
		return fmt.Errorf("%w: %w", build.ErrDownload, err)
	}

	executable := f.opts.Platform.ExecutableName(bin.Name)
	for _, file := range files {
		if filepath.Base(file) == executable {
			logger.InfoKV(ctx, "Installing binary", "path", dest)

			return fsutil.CopyExecutable(file, dest, "")
		}
	}

	return fmt.Errorf("%w: %w: %s in %s", build.ErrDownload, errBinaryNotInBundle, executable, releaseURL)
}

// downloadFile streams rawURL into dest and returns the written size.
func (f *Fetcher) downloadFile(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", build.ErrDownload, err)
	}

	resp, err := f.opts.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", build.ErrDownload, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s, %s: %w", build.ErrDownload, rawURL, resp.Status, errBadHTTPStatus)
	}

	out, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", build.ErrFileSystem, dest, err)
	}

	var w io.Writer = out
	if f.opts.ShowProgress {
		w = io.MultiWriter(out, progressbar.DefaultBytes(resp.ContentLength, "downloading "+path.Base(rawURL)))
	}

	size, err := io.Copy(w, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return 0, fmt.Errorf("%w: write %s: %w", build.ErrDownload, dest, err)
	}

	return size, nil
}
