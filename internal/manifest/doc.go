// Package manifest loads batch manifests: a list of archive sources that
// are imported in one invocation.
//
// # Manifest Format
//
// Manifests can be written in YAML, JSON or TOML format:
//
//	sources:
//	  - url: https://example.com/course.zip
//	  - url: https://www.dropbox.com/s/abc/notes.zip?dl=0
//	    provider: dropbox
//	  - url: https://drive.google.com/file/d/FILEID/view
//	    extension: tgz
//	options:
//	  workers: 2
//	  continue_on_error: true
//
// The same manifest in TOML:
//
//	[[sources]]
//	url = "https://example.com/course.zip"
//
//	[[sources]]
//	url = "https://www.dropbox.com/s/abc/notes.zip?dl=0"
//	provider = "dropbox"
//
//	[options]
//	workers = 2
//	continue_on_error = true
//
// A source without a provider is matched by host; see provider.Detect.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoSources: manifest has no sources defined
//   - ErrEmptyURL: source is missing required URL field
//   - ErrDuplicateSource: two sources share provider and url
//   - ErrInvalidFormat: file is not valid YAML/JSON/TOML
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
