// Package export writes stored runs as PNG frames and SVG drawings.
package export

import (
	"fmt"

	"github.com/san-kum/driftfield/internal/dynamo"
)

var errEmptyScene = fmt.Errorf("export: %w", dynamo.ErrEmptyViewport)
