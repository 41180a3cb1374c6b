package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator builds IDs of the form <prefix><yyyymmdd>-<hex>. The date
// part keeps merge runs sortable by eye in logs and exports.
type RandomGenerator struct {
	prefix string
	now    func() time.Time
}

func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{
		prefix: prefix,
		now:    time.Now,
	}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return g.prefix + g.now().UTC().Format("20060102") + "-" + hex.EncodeToString(buf), nil
}
