package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tansive/spore/internal/common/httpclient"
	"github.com/tansive/spore/pkg/spore"
	"github.com/tansive/spore/pkg/spore/middleware"
	"github.com/tansive/spore/pkg/spore/spec"
)

// HeaderUserAuthToken carries the token obtained by login.
const HeaderUserAuthToken = "X-Weborama-UserAuthToken"

// newClient builds a client from cfg. Options are appended after the ones
// derived from cfg.
func newClient(ctx context.Context, cfg *Config, extra ...spore.Option) (*spore.Client, error) {
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}

	var httpOpts []httpclient.Option
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		httpOpts = append(httpOpts, httpclient.WithTimeout(timeout))
	}
	if cfg.Retries > 0 {
		httpOpts = append(httpOpts, httpclient.WithRetries(cfg.Retries))
	}

	opts := []spore.Option{
		spore.WithLogger(log.Logger),
		spore.WithHTTPOptions(httpOpts...),
		spore.WithCookieDomainAttribute(cfg.CookieDomainAttribute),
		spore.WithMiddleware(cfg.Middlewares...),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, spore.WithBaseURL(MorphBaseURL(cfg.BaseURL)))
	}
	if cfg.Format != "" {
		opts = append(opts, spore.WithFormat(cfg.Format))
	}
	if cfg.SpecVersion != "" {
		opts = append(opts, spore.WithSpecOptions(spec.WithVersionConstraint(cfg.SpecVersion)))
	}
	opts = append(opts, extra...)

	var client *spore.Client
	if cfg.Spec == "" && cfg.OpenAPI != "" {
		sp, err := spec.LoadOpenAPI(ctx, cfg.OpenAPI)
		if err != nil {
			return nil, err
		}
		client, err = spore.New(sp, opts...)
		if err != nil {
			return nil, err
		}
	} else {
		client, err = spore.NewFromFile(ctx, cfg.Spec, opts...)
		if err != nil {
			return nil, err
		}
	}

	if cfg.AccountID != "" {
		client.SetAccountID(cfg.AccountID)
	}
	for _, h := range cfg.Headers {
		client.Enable(middleware.NewAddHeader(h.Name, h.Value))
	}
	if cfg.ApplicationKey != "" {
		client.Enable(middleware.NewWeborama(cfg.ApplicationKey, cfg.PrivateKey, cfg.UserEmail))
	}
	if cfg.Token != "" {
		client.Enable(middleware.NewAddHeader(HeaderUserAuthToken, cfg.Token))
	}
	for _, c := range cfg.Cookies {
		client.SetCookie(c.Name, c.Value, c.Path, c.Domain, c.Secure)
	}
	return client, nil
}
