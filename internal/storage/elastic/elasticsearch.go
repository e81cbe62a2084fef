package elastic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

const LevelIndex = "levels"

type ClientConfig struct {
	Hosts    []string
	Username string
	Password string
	// MaxRetries bounds retries of requests that hit an overloaded or
	// restarting node. Zero keeps the client default.
	MaxRetries int
}

// NewElasticClient builds a client and confirms the cluster answers within ctx.
func NewElasticClient(ctx context.Context, cfg ClientConfig) (*elasticsearch.Client, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("elastic: no hosts configured")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Hosts,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: invalid client config: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}
	return client, nil
}
