// Package extractor detects archive formats and unpacks archives with the
// system unzip and tar tools.
package extractor

import (
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/quantmind-br/archivepuller/internal/domain"
)

// FormatZip is the only format unpacked with unzip
const FormatZip = "zip"

var filenameRe = regexp.MustCompile(`filename\*?=([^;]+)`)

// DetectFormat returns the archive extension for a source. An explicit
// override wins, then the Content-Disposition filename, then the URL path.
func DetectFormat(desc domain.SourceDescriptor, header http.Header) (string, error) {
	if ext := NormalizeExtension(desc.Overrides.Extension); ext != "" {
		return ext, nil
	}

	cd := header.Get("Content-Disposition")
	if name := DispositionFilename(cd); name != "" {
		if ext := extensionOf(name); ext != "" {
			return ext, nil
		}
	}

	if ext := URLExtension(desc.URL); ext != "" {
		return ext, nil
	}

	return "", &domain.FormatDetectionError{URL: desc.URL, ContentDisposition: cd}
}

// KnownFormat returns the format that can be determined before downloading
func KnownFormat(desc domain.SourceDescriptor) string {
	if ext := NormalizeExtension(desc.Overrides.Extension); ext != "" {
		return ext
	}
	return URLExtension(desc.URL)
}

// DispositionFilename extracts the filename from a Content-Disposition value
func DispositionFilename(cd string) string {
	m := filenameRe.FindStringSubmatch(cd)
	if m == nil {
		return ""
	}
	name := strings.Trim(strings.TrimSpace(m[1]), `"`)
	// RFC 5987: charset'lang'value
	if i := strings.Index(name, "''"); i >= 0 {
		name = name[i+2:]
		if dec, err := url.PathUnescape(name); err == nil {
			name = dec
		}
	}
	return name
}

// URLExtension returns the trailing suffix of the URL path
func URLExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return extensionOf(path.Base(u.Path))
}

// NormalizeExtension lower-cases ext and removes leading dots
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

func extensionOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return NormalizeExtension(name[i+1:])
}
