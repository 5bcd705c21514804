package resources

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

var (
	ErrHTTPStatus       = errors.New("unexpected HTTP status")
	ErrRequiredResource = errors.New("required resource unavailable")
)

type ResourceFlag uint8

// WriteCounter counts the number of bytes written to it, and every 10 seconds,
// it logs a message reporting the number of bytes written so far.
type WriteCounter struct {
	Total    uint64
	Last     time.Time
	Reported bool
	Path     string
	Size     uint64
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Total += uint64(n)
	if time.Since(wc.Last).Seconds() > 10 {
		wc.Reported = true
		wc.Last = time.Now()
		log.Info().
			Str("path", wc.Path).
			Str("done", humanize.Bytes(wc.Total)).
			Str("size", humanize.Bytes(wc.Size)).
			Msg("downloading")
	}
	return n, nil
}

// Enumeration of resource flags that indicate what the resolver should do
// with the resource.
const (
	RESOURCE_REQUIRED ResourceFlag = 1 << iota
	RESOURCE_OPTIONAL
)

type ResourceEntryDefs map[string]ResourceFlag
// ResourceEntry holds an opened resource. Data stays valid until the
// owning Resources is cleaned up.
type ResourceEntry struct {
	file    interface{}
	release func() error
	Data    *[]byte
}

type Resources map[string]ResourceEntry

// Cleanup unmaps and closes every entry. Entries are removed, so calling it
// again is harmless.
func (rsrcs *Resources) Cleanup() {
	for name, rsrc := range *rsrcs {
		if rsrc.release != nil {
			if err := rsrc.release(); err != nil {
				log.Warn().Err(err).Str("resource", name).
					Msg("unmapping resource")
			}
		}
		switch t := rsrc.file.(type) {
		case *os.File:
			t.Close()
		case fs.File:
			t.Close()
		}
		delete(*rsrcs, name)
	}
}

// SentencePieceEntries
// Files that make up a SentencePiece tokenizer.
func SentencePieceEntries() ResourceEntryDefs {
	return ResourceEntryDefs{
		"spiece.model": RESOURCE_REQUIRED,
	}
}

// WordPieceEntries
// Files that make up a BERT WordPiece tokenizer.
func WordPieceEntries() ResourceEntryDefs {
	return ResourceEntryDefs{
		"vocab.txt":               RESOURCE_REQUIRED,
		"tokenizer_config.json":   RESOURCE_OPTIONAL,
		"special_tokens_map.json": RESOURCE_OPTIONAL,
	}
}

// FetchHuggingFace
// Wrapper around FetchHTTP that fetches a resource from huggingface.co.
func FetchHuggingFace(id string, rsrc string, auth string) (io.ReadCloser,
	error) {
	return FetchHTTP("https://huggingface.co/"+id+"/resolve/main", rsrc, auth)
}

// SizeHuggingFace
// Wrapper around SizeHTTP that gets the size of a resource from huggingface.co.
func SizeHuggingFace(id string, rsrc string, auth string) (uint, error) {
	return SizeHTTP("https://huggingface.co/"+id+"/resolve/main", rsrc, auth)
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// Fetch
// Given a base URI and a resource name, determines if the resource is local,
// remote, or from huggingface.co. If the resource is local, it returns a
// file handle to the resource. If the resource is remote, or from
// huggingface.co, it fetches the resource and returns a ReadCloser to the
// fetched resource.
func Fetch(uri string, rsrc string, auth string) (io.ReadCloser, error) {
	if isValidUrl(uri) {
		return FetchHTTP(uri, rsrc, auth)
	} else if _, err := os.Stat(path.Join(uri, rsrc)); !os.IsNotExist(err) {
		handle, fileErr := os.Open(path.Join(uri, rsrc))
		if fileErr != nil {
			return nil, errors.Wrapf(fileErr, "error opening %s/%s",
				uri, rsrc)
		}
		return handle, nil
	} else {
		return FetchHuggingFace(uri, rsrc, auth)
	}
}

// Size
// Given a base URI and a resource name, determine the size of the resource.
func Size(uri string, rsrc string, auth string) (uint, error) {
	if isValidUrl(uri) {
		return SizeHTTP(uri, rsrc, auth)
	} else if fsz, err := os.Stat(path.Join(uri, rsrc)); !os.IsNotExist(err) {
		return uint(fsz.Size()), nil
	} else {
		return SizeHuggingFace(uri, rsrc, auth)
	}
}

// AddEntry
// Add a resource to the Resources map, opening it as a mmap.Map.
func (rsrcs *Resources) AddEntry(name string, file *os.File) error {
	fileMmap, release, mmapErr := readMmap(file)
	if mmapErr != nil {
		return errors.Wrapf(mmapErr, "error trying to mmap %s", name)
	}
	(*rsrcs)[name] = ResourceEntry{file: file, release: release,
		Data: fileMmap}
	return nil
}

// OpenFile
// Opens a local file and returns its mmapped contents as a ResourceEntry.
// The caller releases it with Resources.Cleanup.
func OpenFile(filePath string) (*Resources, error) {
	handle, openErr := os.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	rsrcs := make(Resources, 1)
	if entryErr := rsrcs.AddEntry(path.Base(filePath),
		handle); entryErr != nil {
		handle.Close()
		return nil, entryErr
	}
	return &rsrcs, nil
}

// ReadProto unmarshals the protobuf stored at filePath into message.
func ReadProto(filePath string, message proto.Message) error {
	rsrcs, err := OpenFile(filePath)
	if err != nil {
		return err
	}
	defer rsrcs.Cleanup()
	for _, entry := range *rsrcs {
		if unmarshalErr := proto.Unmarshal(*entry.Data,
			message); unmarshalErr != nil {
			return errors.Wrapf(unmarshalErr, "unable to unmarshal %s",
				filePath)
		}
	}
	return nil
}

// ResolveResources resolves all resources at a given uri, and checks if they
// exist in the given directory. If they don't exist, they are downloaded.
// Resources with a flag above rsrcLvl are ignored.
func ResolveResources(uri string, dir string, defs ResourceEntryDefs,
	rsrcLvl ResourceFlag, auth string) (*Resources, error) {
	foundResources := make(Resources, 0)

	for file, flag := range defs {
		if flag > rsrcLvl {
			continue
		}
		logger := log.With().Str("uri", uri).Str("file", file).Logger()
		logger.Debug().Msg("resolving")
		targetPath := path.Join(dir, file)
		var rsrcFile *os.File
		rsrcSize, rsrcSizeErr := Size(uri, file, auth)
		if rsrcSizeErr != nil {
			if flag&RESOURCE_REQUIRED != 0 {
				foundResources.Cleanup()
				return nil, errors.Wrapf(ErrRequiredResource,
					"cannot retrieve `%s` from `%s`: %s", file, uri,
					rsrcSizeErr)
			}
			logger.Debug().Msg("not there, not required")
			continue
		} else if targetStat, targetStatErr := os.Stat(targetPath); targetStatErr == nil &&
			uint(targetStat.Size()) == rsrcSize {
			logger.Debug().Msg("already exists, and of the correct size")
			openFile, skipFileErr := os.Open(targetPath)
			if skipFileErr != nil {
				foundResources.Cleanup()
				return nil, errors.Wrapf(skipFileErr, "error opening '%s'",
					file)
			}
			rsrcFile = openFile
		} else if rsrcReader, rsrcErr := Fetch(uri, file, auth); rsrcErr != nil {
			foundResources.Cleanup()
			return nil, errors.Wrapf(rsrcErr, "cannot retrieve `%s` from `%s`",
				file, uri)
		} else {
			openFile, rsrcFileErr := os.OpenFile(targetPath,
				os.O_TRUNC|os.O_RDWR|os.O_CREATE, 0644)
			if rsrcFileErr != nil {
				rsrcReader.Close()
				foundResources.Cleanup()
				return nil, errors.Wrapf(rsrcFileErr,
					"error opening '%s' for write", file)
			}
			rsrcFile = openFile
			counter := &WriteCounter{
				Last: time.Now(),
				Path: fmt.Sprintf("%s/%s", uri, file),
				Size: uint64(rsrcSize),
			}
			bytesDownloaded, ioErr := io.Copy(rsrcFile,
				io.TeeReader(rsrcReader, counter))
			rsrcReader.Close()
			if ioErr != nil {
				rsrcFile.Close()
				foundResources.Cleanup()
				return nil, errors.Wrapf(ioErr, "error downloading '%s'",
					file)
			}
			if _, seekErr := rsrcFile.Seek(0, io.SeekStart); seekErr != nil {
				rsrcFile.Close()
				foundResources.Cleanup()
				return nil, seekErr
			}
			logger.Info().
				Str("size", humanize.Bytes(uint64(bytesDownloaded))).
				Msg("downloaded")
		}
		if mmapErr := foundResources.AddEntry(file, rsrcFile); mmapErr != nil {
			rsrcFile.Close()
			foundResources.Cleanup()
			return nil, mmapErr
		}
	}
	return &foundResources, nil
}

// ResolveFile
// Returns a local path for a single resource. Local files are used in
// place; anything else is downloaded into dir.
func ResolveFile(uri string, file string, dir string, auth string) (string,
	error) {
	if stat, err := os.Stat(uri); err == nil && !stat.IsDir() {
		return uri, nil
	}
	if stat, err := os.Stat(path.Join(uri, file)); err == nil && !stat.IsDir() {
		return path.Join(uri, file), nil
	}
	if mkdirErr := os.MkdirAll(dir, 0755); mkdirErr != nil {
		return "", mkdirErr
	}
	rsrcs, err := ResolveResources(uri, dir,
		ResourceEntryDefs{file: RESOURCE_REQUIRED}, RESOURCE_REQUIRED, auth)
	if err != nil {
		return "", err
	}
	rsrcs.Cleanup()
	return path.Join(dir, file), nil
}
