package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/bracket-extract/internal/logger"
)

const (
	UserAgent = "bracket-extract/1.0 (github.com/pfrederiksen/bracket-extract)"
	Timeout   = 60 * time.Second

	maxPDFSize = 64 << 20
)

// ErrNotPDF is returned when a downloaded body does not start with the PDF magic bytes.
var ErrNotPDF = errors.New("response is not a PDF document")

var pdfMagic = []byte("%PDF-")

// Fetcher downloads result PDFs into a directory.
type Fetcher struct {
	client *http.Client
	outDir string
}

// New creates a Fetcher writing into outDir.
func New(outDir string) *Fetcher {
	if outDir == "" {
		outDir = "."
	}
	return &Fetcher{
		client: &http.Client{Timeout: Timeout},
		outDir: outDir,
	}
}

// WithClient replaces the HTTP client.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// IsPDFURL reports whether the URL path ends in .pdf.
func IsPDFURL(u *url.URL) bool {
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}

// Fetch downloads rawURL when it points at a PDF. Otherwise it treats rawURL
// as a results page and downloads every PDF it links to. It returns the
// written file paths.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	if IsPDFURL(u) {
		p, err := f.Download(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return []string{p}, nil
	}

	links, err := f.PDFLinks(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no pdf links found on %s", u)
	}

	var paths []string
	var failed int
	taken := make(map[string]bool)
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			failed++
			continue
		}
		p, err := f.save(ctx, link, uniqueName(u, taken))
		if err != nil {
			failed++
			logger.Warn("download failed", logger.Fields{"url": link, "error": err.Error()})
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("all %d downloads failed", failed)
	}
	return paths, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

// PDFLinks returns the absolute URLs of the PDFs linked from pageURL, in page order.
func (f *Fetcher) PDFLinks(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	resp, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return parseLinks(resp.Body, base)
}

// parseLinks collects anchors pointing at PDFs, resolved against base and deduplicated.
func parseLinks(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	links := make([]string, 0)
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			logger.Debug("skipping malformed link", logger.Fields{"href": href})
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if (abs.Scheme != "http" && abs.Scheme != "https") || !IsPDFURL(abs) {
			return
		}

		key := abs.String()
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, key)
	})

	return links, nil
}

// fileName derives a local file name from the last path element of u.
func fileName(u *url.URL) string {
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = filepath.Base(strings.ReplaceAll(name, "\\", "_"))
	if name == "." || name == "/" || name == "" {
		return "download.pdf"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// uniqueName returns fileName(u), or when that name is already taken in this
// run, the name with a short hash of the full URL before the extension.
// Names are compared case-insensitively.
func uniqueName(u *url.URL, taken map[string]bool) string {
	name := fileName(u)
	if taken[strings.ToLower(name)] {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		sum := sha256.Sum256([]byte(u.String()))
		name = fmt.Sprintf("%s-%x%s", stem, sum[:4], ext)
		for i := 2; taken[strings.ToLower(name)]; i++ {
			name = fmt.Sprintf("%s-%x-%d%s", stem, sum[:4], i, ext)
		}
	}
	taken[strings.ToLower(name)] = true
	return name
}

// Download stores the PDF at pdfURL in the output directory and returns its path.
func (f *Fetcher) Download(ctx context.Context, pdfURL string) (string, error) {
	u, err := url.Parse(pdfURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	return f.save(ctx, pdfURL, fileName(u))
}

// save downloads pdfURL into the output directory under name.
func (f *Fetcher) save(ctx context.Context, pdfURL, name string) (string, error) {
	resp, err := f.get(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFSize+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pdfURL, err)
	}
	if len(data) > maxPDFSize {
		return "", fmt.Errorf("%s exceeds %d bytes", pdfURL, maxPDFSize)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", fmt.Errorf("%s: %w", pdfURL, ErrNotPDF)
	}

	if err := os.MkdirAll(f.outDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	dest := filepath.Join(f.outDir, name)
	tmp, err := os.CreateTemp(f.outDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}

	logger.Info("pdf downloaded", logger.Fields{"url": pdfURL, "path": dest, "bytes": len(data)})
	return dest, nil
}
