package tender

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a 32-char hex entity id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
