package matching

import (
	"fmt"
	"strings"

	"shopify-asset-sync/internal/domain/model"
)

// Tier identifies which matching tier produced a result. Lower tiers take
// precedence; the ordering is a total order, never randomized.
type Tier int

const (
	TierExactSkuBase Tier = iota + 1
	TierProductBase
	TierColorFirstFlexible
)

func (t Tier) String() string {
	switch t {
	case TierExactSkuBase:
		return "exact-sku-base"
	case TierProductBase:
		return "product-base"
	case TierColorFirstFlexible:
		return "color-first-flexible"
	default:
		return "unknown"
	}
}

// Confidence qualifies how strict the winning tier was.
type Confidence string

const (
	ConfidenceExact    Confidence = "exact"
	ConfidenceFlexible Confidence = "flexible"
)

// MatchResult is a successful filename-to-variant match.
type MatchResult struct {
	Variant    *model.Variant
	Tier       Tier
	Confidence Confidence
}

// MatcherConfig tunes the flexible tier. Zero values fall back to defaults.
type MatcherConfig struct {
	// MinTokenOverlap is the minimum shared-token ratio accepted by the
	// color-first flexible tier.
	MinTokenOverlap float64
}

const defaultMinTokenOverlap = 0.5

// Matcher maps asset file names to catalog variants through ordered tiers.
// Match is pure: the same file name and index always produce the same
// result.
type Matcher struct {
	minTokenOverlap float64
}

func NewMatcher(cfg MatcherConfig) *Matcher {
	overlap := cfg.MinTokenOverlap
	if overlap <= 0 || overlap > 1 {
		overlap = defaultMinTokenOverlap
	}
	return &Matcher{minTokenOverlap: overlap}
}

// Match resolves fileName against the catalog. Tiers are attempted in
// order and the first hit wins; within a tier, ties go to the first
// candidate in catalog fetch order.
//
// Tier 1 is the only tier that treats dashes as significant, so
// "WP-SCAL-DUS" never falls through to "WP-SCALLOPS-DUS" at full
// confidence. Tiers 2 and 3 recover legitimate naming drift; tier 3 is
// gated on an exact color-code hit to bound the candidate set.
func (m *Matcher) Match(fileName string, idx *CatalogIndex) (MatchResult, error) {
	parsed, err := ParseFileName(fileName)
	if err != nil {
		return MatchResult{}, err
	}

	// Tier 1: exact SKU-base equality, case-insensitive, dash-preserving.
	// A base name that kept its size segment still counts when it equals
	// the full SKU.
	for i := range idx.variants {
		v := &idx.variants[i]
		if strings.EqualFold(ExtractSKUBase(v.Sku), parsed.BaseName) || strings.EqualFold(v.Sku, parsed.BaseName) {
			return MatchResult{Variant: v, Tier: TierExactSkuBase, Confidence: ConfidenceExact}, nil
		}
	}

	// Tier 2: product-base equality or a dash-prefix relationship in
	// either direction.
	fileProduct := strings.ToUpper(parsed.ProductBase)
	for i := range idx.variants {
		v := &idx.variants[i]
		candidateProduct := strings.ToUpper(productPart(ExtractSKUBase(v.Sku)))
		if candidateProduct == "" {
			continue
		}
		if fileProduct == candidateProduct ||
			strings.HasPrefix(fileProduct, candidateProduct+"-") ||
			strings.HasPrefix(candidateProduct, fileProduct+"-") {
			return MatchResult{Variant: v, Tier: TierProductBase, Confidence: ConfidenceExact}, nil
		}
	}

	// Tier 3: restrict to candidates sharing the color code, then accept
	// loose product equivalence.
	for _, v := range idx.ByColorCode(parsed.ColorCode) {
		candidateProduct := productPart(ExtractSKUBase(v.Sku))
		if candidateProduct == "" {
			continue
		}
		if m.flexibleProductMatch(parsed.ProductBase, candidateProduct) {
			return MatchResult{Variant: v, Tier: TierColorFirstFlexible, Confidence: ConfidenceFlexible}, nil
		}
	}

	return MatchResult{}, fmt.Errorf("%w: searched color=%s product=%s",
		model.ErrNoCatalogMatch, parsed.ColorCode, parsed.ProductBase)
}

// flexibleProductMatch accepts two product identifiers when they are equal
// after separator removal, when one contains the other, or when their
// dash-delimited token overlap meets the configured ratio.
func (m *Matcher) flexibleProductMatch(a, b string) bool {
	flatA := stripSeparators(a)
	flatB := stripSeparators(b)
	if flatA == "" || flatB == "" {
		return false
	}
	if flatA == flatB {
		return true
	}
	if strings.Contains(flatA, flatB) || strings.Contains(flatB, flatA) {
		return true
	}
	return tokenOverlap(a, b) >= m.minTokenOverlap
}

// productPart drops the color segment from a SKU-base, keeping
// PREFIX-PRODUCT.
func productPart(skuBase string) string {
	segments := strings.Split(skuBase, "-")
	if len(segments) < 2 {
		return ""
	}
	if len(segments) > 2 {
		segments = segments[:len(segments)-1]
	}
	return strings.Join(segments, "-")
}

func stripSeparators(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// tokenOverlap is the count of shared dash-delimited tokens divided by the
// larger token count.
func tokenOverlap(a, b string) float64 {
	tokensA := splitTokens(a)
	tokensB := splitTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	shared := 0
	seen := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		if setA[t] && !seen[t] {
			shared++
			seen[t] = true
		}
	}

	max := len(tokensA)
	if len(tokensB) > max {
		max = len(tokensB)
	}
	return float64(shared) / float64(max)
}

func splitTokens(s string) []string {
	parts := strings.Split(strings.ToUpper(s), "-")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
