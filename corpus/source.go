package corpus

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Document is the full text of one corpus file.
type Document struct {
	Path string
	Text string
}

// SourceOptions controls how a location is expanded into documents.
type SourceOptions struct {
	Extensions []string
	SortSpec   string
	S3Client   S3Client
}

// Source is an ordered list of documents backed by local files or S3
// objects. Read is safe for concurrent use.
type Source struct {
	Paths []PathInfo
	s3    S3Client
}

// OpenSource expands location, which is a file, a directory searched
// recursively, or an `s3://bucket/prefix` URI. Directories and prefixes are
// filtered by extension and reordered by the sort spec.
func OpenSource(location string, options SourceOptions) (*Source, error) {
	exts := options.Extensions
	if len(exts) == 0 {
		exts = Format("").Extensions()
	}
	source := &Source{s3: options.S3Client}
	if IsS3URI(location) {
		if source.s3 == nil {
			return nil, errors.Errorf("no s3 client configured for %s",
				location)
		}
		bucket, prefix, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		if source.Paths, err = listS3(source.s3, bucket, prefix,
			exts); err != nil {
			return nil, err
		}
	} else {
		stat, err := os.Stat(location)
		if err != nil {
			return nil, err
		}
		if !stat.IsDir() {
			source.Paths = []PathInfo{{
				Path:    location,
				Size:    stat.Size(),
				ModTime: stat.ModTime(),
			}}
			return source, nil
		}
		if source.Paths, err = GlobFiles(location, exts...); err != nil {
			return nil, err
		}
	}
	if err := ReorderPaths(source.Paths, options.SortSpec); err != nil {
		return nil, err
	}
	return source, nil
}

func (source *Source) Len() int {
	return len(source.Paths)
}

// TotalSize is the sum of the document sizes in bytes.
func (source *Source) TotalSize() uint64 {
	var total uint64
	for _, pathInfo := range source.Paths {
		total += uint64(pathInfo.Size)
	}
	return total
}

func (source *Source) open(location string) (io.ReadCloser, error) {
	if IsS3URI(location) {
		return fetchS3(source.s3, location)
	}
	return os.Open(location)
}

// Read loads the idx-th document in full.
func (source *Source) Read(idx int) (Document, error) {
	pathInfo := source.Paths[idx]
	handle, err := source.open(pathInfo.Path)
	if err != nil {
		return Document{}, err
	}
	defer handle.Close()
	var sb strings.Builder
	if pathInfo.Size > 0 {
		sb.Grow(int(pathInfo.Size))
	}
	if _, err = io.Copy(&sb, bufio.NewReaderSize(handle,
		8*1024*1024)); err != nil {
		return Document{}, errors.Wrapf(err, "reading %s", pathInfo.Path)
	}
	log.Info().
		Str("path", pathInfo.Path).
		Str("size", humanize.Bytes(uint64(sb.Len()))).
		Msg("read document")
	return Document{Path: pathInfo.Path, Text: sb.String()}, nil
}
