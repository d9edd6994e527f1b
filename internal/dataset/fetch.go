package dataset

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ercilio-oss/lastmile-dsp-italy/internal/logger"
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Fetch downloads a feed workbook to dest with exponential retry. Server
// and network errors retry; a 4xx is permanent since the URL is wrong, not
// flaky. The file is written through a temp name so a half-finished
// download never shadows a good workbook.
func Fetch(url, dest string) error {
	log := logger.WithComponent("dataset.fetch").WithField("url", url)
	log.Info("downloading feed workbook")

	var lastErr error
	op := func() error {
		resp, err := httpClient.Get(url)
		if err != nil {
			lastErr = err
			log.WithField("error", err.Error()).Warn("download attempt failed")
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("request rejected: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}

		tmp, err := os.CreateTemp(filepath.Dir(dest), ".feed-*.xlsx")
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(tmp, resp.Body); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			lastErr = err
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			lastErr = err
			return err
		}
		if err := os.Rename(tmp.Name(), dest); err != nil {
			os.Remove(tmp.Name())
			lastErr = err
			return backoff.Permanent(err)
		}
		lastErr = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("fetch workbook: %w", lastErr)
	}
	log.WithField("dest", dest).Info("feed workbook downloaded")
	return nil
}
