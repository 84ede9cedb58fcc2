package matching

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"shopify-asset-sync/internal/domain/model"
)

// Recognized file names look like PREFIX-PRODUCT-COLOR[-SIZE]<suffix>, where
// the suffix identifies the asset role: image position (_1, _2, ...) or a
// spec-sheet marker (_spec, _SPEC, -spec).
var roleSuffixRegex = regexp.MustCompile(`(?i)(_\d+|[_-]spec)$`)

// ParsedFileName is the decomposition of a recognized asset file name.
type ParsedFileName struct {
	// BaseName is the file name with extension and role suffix stripped.
	BaseName string
	// ColorCode is the third dash-delimited segment, always 3 characters.
	ColorCode string
	// ProductBase is every segment of BaseName except the last.
	ProductBase string
}

// ParseFileName validates and decomposes an asset file name. A name that
// does not match the recognized shape, or whose color segment is not exactly
// 3 characters, fails with ErrInvalidFilename; no matching tier is attempted
// for such files.
func ParseFileName(fileName string) (ParsedFileName, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return ParsedFileName{}, fmt.Errorf("%w: empty name", model.ErrInvalidFilename)
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = roleSuffixRegex.ReplaceAllString(base, "")
	if base == "" {
		return ParsedFileName{}, fmt.Errorf("%w: %q", model.ErrInvalidFilename, fileName)
	}

	segments := strings.Split(base, "-")
	if len(segments) < 3 {
		return ParsedFileName{}, fmt.Errorf("%w: %q has %d segments, need at least 3", model.ErrInvalidFilename, fileName, len(segments))
	}

	color := segments[2]
	if len(color) != 3 {
		return ParsedFileName{}, fmt.Errorf("%w: color segment %q in %q is not 3 characters", model.ErrInvalidFilename, color, fileName)
	}

	return ParsedFileName{
		BaseName:    base,
		ColorCode:   strings.ToUpper(color),
		ProductBase: strings.Join(segments[:len(segments)-1], "-"),
	}, nil
}

// ExtractSKUBase truncates a SKU to its first three dash-delimited segments
// (prefix, product, color), discarding size and variant suffixes. SKUs with
// fewer than four segments are returned unchanged.
func ExtractSKUBase(sku string) string {
	segments := strings.Split(sku, "-")
	if len(segments) <= 3 {
		return sku
	}
	return strings.Join(segments[:3], "-")
}

// GetColorCode returns the 3-character color segment of a SKU, or "" when
// the SKU has fewer than three segments.
func GetColorCode(sku string) string {
	segments := strings.Split(sku, "-")
	if len(segments) < 3 {
		return ""
	}
	return strings.ToUpper(segments[2])
}
