package command

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/observability"
)

const DefaultServiceName = "timeloop"

type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	Endpoint    string `json:"endpoint"`
	ServiceName string `json:"service_name"`
	Insecure    bool   `json:"insecure"`
}

func (c *TracingConfig) validate() error {
	if !c.Enabled {
		return nil
	}

	el := errors.NewErrorList()
	if c.Endpoint == "" {
		el.Add(fmt.Errorf("tracing: endpoint is required when enabled"))
	} else if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		el.Add(fmt.Errorf("tracing: invalid endpoint %q", c.Endpoint))
	}

	return el.Err()
}

func (c *TracingConfig) buildProvider(ctx context.Context, version string) (*observability.TracerProvider, error) {
	name := c.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	return observability.InitTracing(ctx, observability.Config{
		Enabled:        c.Enabled,
		Endpoint:       c.Endpoint,
		ServiceName:    name,
		ServiceVersion: version,
		Insecure:       c.Insecure,
	})
}
