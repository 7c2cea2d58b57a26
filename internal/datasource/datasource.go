// Package datasource defines the minimal contract for byte sources feeding
// the catalog scanners.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of decoded bytes. Implementations must honor a
// canceled context before touching the underlying resource.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
