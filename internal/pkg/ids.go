package pkg

import "github.com/google/uuid"

// NewID returns a random identifier for connections and stored matches.
func NewID() string {
	return uuid.NewString()
}
