// Package s3ds extracts raw batches from object storage. Addresses in either
// s3://bucket/key or https://bucket.s3.region.amazonaws.com/key form are
// accepted, and the object is decoded by its file extension (.csv or .json).
//
// Buckets are opened through gocloud.dev/blob URLs, so tests can point the
// same reader at a file:// bucket.
package s3ds

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"

	_ "gocloud.dev/blob/fileblob" // file:// buckets for tests
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets

	"salesetl/internal/records"
)

// Address is a parsed object-storage location.
type Address struct {
	BucketURL string // gocloud bucket URL, e.g. s3://bucket
	Key       string // object key within the bucket
}

// ParseAddress splits an object address into its bucket URL and key.
// Supported forms:
//
//	s3://bucket/path/to/object
//	https://bucket.s3.amazonaws.com/path/to/object
//	https://bucket.s3.region.amazonaws.com/path/to/object
//	file:///dir/path/to/object (tests)
func ParseAddress(addr string) (Address, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return Address{}, errors.Wrapf(err, "s3ds: parse address %q", addr)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return Address{}, errors.Errorf("s3ds: address %q has no object key", addr)
	}

	switch u.Scheme {
	case "s3":
		return Address{BucketURL: "s3://" + u.Host, Key: key}, nil
	case "file":
		// fileblob buckets are directories; the key is the file name.
		dir, base := path.Split(u.Path)
		return Address{BucketURL: "file://" + strings.TrimSuffix(dir, "/"), Key: base}, nil
	case "http", "https":
		// Virtual-hosted style: the bucket is the first host label.
		bucket, rest, ok := strings.Cut(u.Host, ".")
		if !ok || !strings.Contains(rest, "amazonaws.com") {
			return Address{}, errors.Errorf("s3ds: address %q is not an S3 URL", addr)
		}
		return Address{BucketURL: "s3://" + bucket, Key: key}, nil
	default:
		return Address{}, errors.Errorf("s3ds: unsupported scheme %q in address %q", u.Scheme, addr)
	}
}

// Retrieve downloads the object at addr and decodes it into a raw batch.
// The decoder is picked from the key's file extension.
func Retrieve(ctx context.Context, addr string) ([]records.Record, error) {
	parsed, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	bucket, err := blob.OpenBucket(ctx, parsed.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "s3ds: open bucket %s", parsed.BucketURL)
	}
	defer bucket.Close()

	r, err := bucket.NewReader(ctx, parsed.Key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "s3ds: read object %s/%s", parsed.BucketURL, parsed.Key)
	}
	defer r.Close()

	return Decode(r, parsed.Key)
}

// Decode parses an object body into a raw batch based on the key's extension.
func Decode(r io.Reader, key string) ([]records.Record, error) {
	switch ext := strings.ToLower(path.Ext(key)); ext {
	case ".csv":
		return decodeCSV(r)
	case ".json":
		return decodeJSON(r)
	default:
		return nil, errors.Errorf("s3ds: unsupported object format %q for key %q", ext, key)
	}
}

// decodeCSV reads a header row then one record per data row.
func decodeCSV(r io.Reader) ([]records.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "s3ds: read csv header")
	}

	var out []records.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "s3ds: read csv row")
		}
		rec := make(records.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
}

// decodeJSON accepts either an array of objects or a column-oriented object
// of the form {"col": {"0": v0, "1": v1, ...}, ...}.
func decodeJSON(r io.Reader) ([]records.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "s3ds: read json object")
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err == nil {
		out := make([]records.Record, len(rows))
		for i, row := range rows {
			out[i] = records.Record(row)
		}
		return out, nil
	}

	var cols map[string]map[string]any
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, errors.Wrap(err, "s3ds: decode json object")
	}
	return pivotColumns(cols), nil
}

// pivotColumns turns column-oriented JSON into row records. Row keys are the
// stringified row index, so ordering follows the numeric key.
func pivotColumns(cols map[string]map[string]any) []records.Record {
	n := 0
	for _, col := range cols {
		if len(col) > n {
			n = len(col)
		}
	}
	out := make([]records.Record, 0, n)
	for i := 0; i < n; i++ {
		idx := strconv.Itoa(i)
		rec := make(records.Record, len(cols))
		for name, col := range cols {
			if v, ok := col[idx]; ok {
				rec[name] = v
			}
		}
		out = append(out, rec)
	}
	return out
}
