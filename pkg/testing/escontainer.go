package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	ESImageEnv     = "ES_TEST_IMAGE"
	DefaultESImage = "docker.elastic.co/elasticsearch/elasticsearch:8.12.0"
)

type ESContainer struct {
	Container testcontainers.Container
	Address   string
}

// NewESContainer starts a single node over plain http and terminates it when tb ends.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()

	c, err := elasticsearch.Run(ctx,
		imageFromEnv(ESImageEnv, DefaultESImage),
		elasticsearch.WithPassword(""),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").
				WithPort("9200").
				WithStartupTimeout(60*time.Second),
		),
	)
	if c != nil {
		tb.Cleanup(func() {
			if err := testcontainers.TerminateContainer(c); err != nil {
				tb.Logf("terminate elasticsearch container: %v", err)
			}
		})
	}
	if err != nil {
		tb.Fatalf("start elasticsearch container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		tb.Fatalf("elasticsearch host: %v", err)
	}
	port, err := c.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("elasticsearch port: %v", err)
	}

	return &ESContainer{
		Container: c,
		Address:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
