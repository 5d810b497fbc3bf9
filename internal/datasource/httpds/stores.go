package httpds

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"salesetl/internal/records"
)

// StoreCount asks the API how many stores exist. countURL is the
// number-of-stores endpoint.
func (c *Client) StoreCount(ctx context.Context, countURL string) (int, error) {
	var body struct {
		NumberStores int `json:"number_stores"`
	}
	if err := c.getJSON(ctx, countURL, &body); err != nil {
		return 0, err
	}
	if body.NumberStores <= 0 {
		return 0, errors.Errorf("httpds: API reported %d stores", body.NumberStores)
	}
	return body.NumberStores, nil
}

// RetrieveStores fetches every store detail record. detailTemplate is a
// fmt template with one %d verb for the store number; stores are numbered
// 0 through count-1. Results come back in store-number order. Any store
// that cannot be fetched fails the whole extraction: a partial store
// dimension would silently break order foreign keys downstream.
func (c *Client) RetrieveStores(ctx context.Context, detailTemplate string, count int) ([]records.Record, error) {
	out := make([]records.Record, count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			var rec map[string]any
			url := fmt.Sprintf(detailTemplate, i)
			if err := c.getJSON(ctx, url, &rec); err != nil {
				return errors.Wrapf(err, "httpds: store %d", i)
			}
			out[i] = records.Record(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
