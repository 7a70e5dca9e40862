package httpapi

import (
	"fmt"

	"github.com/crasofuentes-hub/irrl/apierr"
)

// apierrNotFound is the boundary-level "path segment required" error for
// endpoints whose id/path comes from the URL rather than a request body.
func apierrNotFound(resource string) error {
	return apierr.New(apierr.CodeNotFound, fmt.Sprintf("%s id or path is required", resource))
}
