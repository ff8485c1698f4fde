package whispercpp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
)

// defaultDownloadBaseURL hosts the ggml conversions of the whisper models.
const defaultDownloadBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// modelCache is the on-disk model-weight cache, keyed by model name.
// First use of any model downloads it; subsequent uses reuse the file.
type modelCache struct {
	dir     string
	baseURL string
	status  func(written, total int64)
	client  *http.Client
	log     *logger.Logger
}

func newModelCache(dir, baseURL string, status func(int64, int64)) *modelCache {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "transcriptor", "models")
	}
	if baseURL == "" {
		baseURL = defaultDownloadBaseURL
	}
	return &modelCache{
		dir:     dir,
		baseURL: baseURL,
		status:  status,
		client:  &http.Client{Timeout: 30 * time.Minute},
		log:     logger.WithComponent("engine.whispercpp.cache"),
	}
}

// Path returns where the named model's weights live in the cache.
func (c *modelCache) Path(model string) string {
	return filepath.Join(c.dir, fmt.Sprintf("ggml-%s.bin", model))
}

// Ensure returns the local path of the model weights, downloading them
// on a cache miss. A partially downloaded file is never visible under
// the final name.
func (c *modelCache) Ensure(ctx context.Context, model string) (string, error) {
	path := c.Path(model)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return "", errors.ModelLoadFailed(model, fmt.Errorf("create cache directory: %w", err))
	}

	url := fmt.Sprintf("%s/ggml-%s.bin", c.baseURL, model)
	c.log.Info("downloading model weights", logger.Fields(logger.FieldModel, model, "url", url))

	if err := c.download(ctx, url, path); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.ModelLoadFailed(model, err)
	}
	return path, nil
}

func (c *modelCache) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch model: unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}

	pw := &progressWriter{
		dest:   f,
		total:  resp.ContentLength,
		status: c.status,
		ctx:    ctx,
	}
	_, copyErr := io.Copy(pw, resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		if copyErr != nil {
			return fmt.Errorf("download model: %w", copyErr)
		}
		return fmt.Errorf("flush model file: %w", closeErr)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize model file: %w", err)
	}
	return nil
}

// progressWriter reports byte-level download progress and aborts early
// when the context is cancelled mid-stream.
type progressWriter struct {
	dest    io.Writer
	total   int64
	written int64
	status  func(written, total int64)
	ctx     context.Context
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	select {
	case <-pw.ctx.Done():
		return 0, pw.ctx.Err()
	default:
	}

	n, err := pw.dest.Write(p)
	pw.written += int64(n)
	if pw.status != nil {
		pw.status(pw.written, pw.total)
	}
	return n, err
}
