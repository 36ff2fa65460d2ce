package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/charmbracelet/log"
	"github.com/golang/snappy"
)

// FileFormat represents the encodings a dictionary asset can come in
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatTrie               // Raw binary trie
	FormatSnappy             // Snappy block-compressed binary trie
	FormatText               // One entry per line, built on load
)

var (
	ErrUnknownFormat = errors.New("unknown dictionary format")
	ErrUndersized    = errors.New("trie blob is smaller than one word")
	ErrMisaligned    = errors.New("trie blob length is not a multiple of the word size")
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTrie: {
		Format:      FormatTrie,
		Description: "Binary Trie Dictionary",
		Extensions:  []string{".bin", ".trie"},
		MinSize:     0,
	},
	FormatSnappy: {
		Format:      FormatSnappy,
		Description: "Snappy Compressed Binary Trie",
		Extensions:  []string{".sz", ".snappy"},
		MinSize:     1,
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Word List",
		Extensions:  []string{".txt"},
		MinSize:     0,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// DetectFormat picks a format from the extension of a path, URL or object key.
func DetectFormat(name string) FileFormat {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		name = u.Path
	}
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
	if ext == "" {
		return FormatUnknown
	}
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// Decode turns raw asset bytes into a trie blob.
func Decode(format FileFormat, raw []byte) ([]byte, error) {
	if info, ok := supportedFormats[format]; ok && int64(len(raw)) < info.MinSize {
		return nil, fmt.Errorf("asset is too small (%d bytes) for format %s (minimum: %d bytes)",
			len(raw), info.Description, info.MinSize)
	}

	switch format {
	case FormatTrie:
		return raw, nil
	case FormatSnappy:
		data, err := snappy.Decode(nil, raw)
		if err != nil {
			return nil, fmt.Errorf("decompressing snappy asset: %w", err)
		}
		return data, nil
	case FormatText:
		b := trie.NewBuilder()
		n, err := b.AddFrom(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("reading word list: %w", err)
		}
		log.Debugf("Building trie from %d lines (%d distinct entries)", n, b.Len())
		return b.Build()
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// ValidateTrie checks the framing of a trie blob. The reader tolerates any
// input, so failures here are worth a warning rather than a refusal.
func ValidateTrie(data []byte) error {
	if len(data) < trie.WordSize {
		return fmt.Errorf("%w: %d bytes", ErrUndersized, len(data))
	}
	if len(data)%trie.WordSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrMisaligned, len(data))
	}
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ListSupportedFormats returns all supported formats ordered by format id
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, info := range supportedFormats {
		formats = append(formats, info)
	}
	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Format < formats[j].Format
	})
	return formats
}
