package intent

import "github.com/jonesrussell/north-cloud/intent-resolver/models"

// Cache TTL rules, in seconds.
const (
	baseTTL        = 300
	deprecatedTTL  = 60
	crawlableTTL   = 600
	largeBundleTTL = 900
)

// largeBundleBytes is the gzipped bundle size above which descriptors get a
// longer TTL to amortize the heavier fetch.
const largeBundleBytes = 50_000

// computeTTL derives the recommended cache lifetime for a descriptor.
// Crawlable intents and heavy components raise the floor; a deprecated
// intent or component clamps the result down regardless of the floors, so
// stale deprecations age out fast.
func computeTTL(intentDef *models.IntentDefinition, componentDef *models.ComponentDefinition) int {
	ttl := baseTTL

	if intentDef.Crawlable && ttl < crawlableTTL {
		ttl = crawlableTTL
	}
	if componentDef.BundleSizeBytes() > largeBundleBytes && ttl < largeBundleTTL {
		ttl = largeBundleTTL
	}
	if (intentDef.Deprecated || componentDef.Deprecated) && ttl > deprecatedTTL {
		ttl = deprecatedTTL
	}

	return ttl
}
