package constants

import "strings"

// AllowedExtensions holds the receipt image extensions picked up when
// scanning an input directory.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsReceiptImage reports whether a filename looks like a downloadable
// receipt image.
func IsReceiptImage(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(name[i:])]
	return ok
}
