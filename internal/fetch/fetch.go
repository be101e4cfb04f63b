// Package fetch downloads the published Offshore Leaks archive and extracts
// the CSV artifacts a load run expects into a source store.
package fetch

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"leakloader/internal/source"
	"leakloader/pkg/oldb"
)

// DefaultURL is the ICIJ's published full database dump.
const DefaultURL = "https://offshoreleaks-data.icij.org/offshoreleaks/csv/full-oldb.LATEST.zip"

// ArchiveName is the store name for the downloaded archive when it is kept.
const ArchiveName = "full-oldb.zip"

// progressInterval is how many received bytes separate progress log lines.
const progressInterval = 256 << 20

// Options configures a fetch.
type Options struct {
	// URL of the archive. Defaults to DefaultURL.
	URL string
	// Dest receives the extracted artifacts.
	Dest source.Store
	// Log receives progress. Defaults to a text handler on stderr.
	Log *slog.Logger
	// Force overwrites artifacts already present in the store. Without it
	// a fetch refuses to clobber a previous download.
	Force bool
	// KeepArchive stores the downloaded zip alongside the extracted files.
	KeepArchive bool
	// Client overrides the retrying HTTP client (tests).
	Client *retryablehttp.Client
}

// Result reports what a fetch downloaded and extracted.
type Result struct {
	URL string
	// Artifacts are the extracted CSVs in load order.
	Artifacts []source.Info
	// Archive is set when the zip itself was kept.
	Archive  *source.Info
	Duration time.Duration
}

// Fetch downloads the archive, extracts exactly the expected CSV artifacts
// into the destination store, and discards everything else. The download is
// retried on transient failures.
func Fetch(ctx context.Context, opts Options) (Result, error) {
	if opts.Dest == nil {
		return Result{}, errors.New("fetch: destination store is required")
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	client := opts.Client
	if client == nil {
		client = retryablehttp.NewClient()
		client.RetryMax = 4
		client.Logger = nil
	}

	if !opts.Force {
		for _, table := range oldb.Tables {
			_, err := opts.Dest.Stat(ctx, table.Artifact)
			if err == nil {
				return Result{}, fmt.Errorf("%w: %s (re-run with --force to overwrite)",
					source.ErrExists, table.Artifact)
			}
			if !errors.Is(err, source.ErrNotFound) {
				return Result{}, fmt.Errorf("stat %s: %w", table.Artifact, err)
			}
		}
	}

	start := time.Now()
	archivePath, size, err := download(ctx, client, opts.URL, opts.Log)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = os.Remove(archivePath) }()

	artifacts, err := extract(ctx, archivePath, opts.Dest, opts.Force)
	if err != nil {
		return Result{}, err
	}

	result := Result{URL: opts.URL, Artifacts: artifacts, Duration: time.Since(start)}
	if opts.KeepArchive {
		f, err := os.Open(archivePath)
		if err != nil {
			return Result{}, fmt.Errorf("reopen archive: %w", err)
		}
		info, err := opts.Dest.Put(ctx, ArchiveName, f, source.PutOptions{Overwrite: opts.Force})
		_ = f.Close()
		if err != nil {
			return Result{}, fmt.Errorf("store archive: %w", err)
		}
		result.Archive = &info
	}

	opts.Log.Info("fetch complete",
		"archive", humanize.Bytes(uint64(size)),
		"files", len(artifacts),
		"duration", result.Duration,
	)
	return result, nil
}

func download(ctx context.Context, client *retryablehttp.Client, url string, log *slog.Logger) (string, int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if resp.ContentLength > 0 {
		log.Info("downloading archive", "url", url, "size", humanize.Bytes(uint64(resp.ContentLength)))
	} else {
		log.Info("downloading archive", "url", url)
	}

	tmp, err := os.CreateTemp("", "leakloader-archive-*.zip")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	src := &progressReader{r: resp.Body, log: log, total: resp.ContentLength, nextMark: progressInterval}
	size, err := io.Copy(tmp, src)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("close archive: %w", err)
	}
	return tmp.Name(), size, nil
}

// extract copies the expected CSV members into the store. Member paths
// inside the archive vary between releases, so matching is by base name;
// anything unexpected is ignored.
func extract(ctx context.Context, archivePath string, store source.Store, force bool) ([]source.Info, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	done := make(map[string]bool, len(oldb.Tables))
	for _, table := range oldb.Tables {
		done[table.Artifact] = false
	}
	infos := make(map[string]source.Info, len(done))
	for _, member := range zr.File {
		name := path.Base(member.Name)
		if extracted, expected := done[name]; !expected || extracted || member.FileInfo().IsDir() {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("open member %s: %w", member.Name, err)
		}
		info, err := store.Put(ctx, name, rc, source.PutOptions{Overwrite: force})
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", name, err)
		}
		done[name] = true
		infos[name] = info
	}

	var missing []string
	out := make([]source.Info, 0, len(oldb.Tables))
	for _, table := range oldb.Tables {
		if !done[table.Artifact] {
			missing = append(missing, table.Artifact)
			continue
		}
		out = append(out, infos[table.Artifact])
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("archive is missing expected files: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// progressReader logs cumulative received bytes at fixed intervals so long
// downloads show life without flooding the log.
type progressReader struct {
	r        io.Reader
	log      *slog.Logger
	total    int64
	read     int64
	nextMark int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read >= p.nextMark {
		args := []any{"received", humanize.Bytes(uint64(p.read))}
		if p.total > 0 {
			args = append(args, "of", humanize.Bytes(uint64(p.total)))
		}
		p.log.Info("download progress", args...)
		p.nextMark += progressInterval
	}
	return n, err
}
