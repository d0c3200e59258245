package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSpecNotFound.Msg("spec file not found: " + path).With("source", path)
		}
		return nil, ErrSpecNotFound.MsgErr("unable to read spec file: "+path, err).With("source", path)
	}
	return data, nil
}

// errNotFoundStatus marks a 4xx reply, which is not worth retrying.
var errNotFoundStatus = errors.New("spec url returned a client error")

func fetch(ctx context.Context, source string, settings Settings) ([]byte, error) {
	attempts := settings.FetchRetries
	if attempts < 1 {
		attempts = 1
	}
	client := &http.Client{Timeout: settings.HTTPTimeout}

	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("%w: %s", errNotFoundStatus, resp.Status))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status fetching spec: %s", resp.Status)
			}
			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().Uint("attempt", n+1).Err(err).Str("source", source).Msg("retrying spec fetch")
		}),
	)
	if err != nil {
		return nil, ErrSpecNotFound.MsgErr("unable to fetch spec: "+source, err).With("source", source)
	}
	return data, nil
}
