package corpus

import (
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yargevad/filepathx"
)

var (
	ErrNoFiles         = errors.New("no matching files")
	ErrInvalidSortSpec = errors.New("invalid sort spec")
)

type PathInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Dir     bool
}

// GlobFiles
// Given a directory path, recursively finds all files ending in one of the
// given extensions, returning a slice of PathInfo in path order.
func GlobFiles(dirPath string, exts ...string) (pathInfos []PathInfo,
	err error) {
	dirPath = strings.TrimSuffix(dirPath, "/")
	seen := make(map[string]bool)
	paths := make([]string, 0)
	for _, ext := range exts {
		matches, globErr := filepathx.Glob(dirPath + "/**/*." +
			strings.TrimPrefix(ext, "."))
		if globErr != nil {
			return nil, globErr
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrNoFiles, "%s does not contain any %s "+
			"files", dirPath, strings.Join(exts, "/"))
	}
	sort.Strings(paths)
	pathInfos = make([]PathInfo, 0, len(paths))
	for _, currPath := range paths {
		stat, statErr := os.Stat(currPath)
		if statErr != nil {
			return nil, statErr
		}
		if stat.IsDir() {
			continue
		}
		pathInfos = append(pathInfos, PathInfo{
			Path:    currPath,
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
			Dir:     stat.IsDir(),
		})
	}
	return pathInfos, nil
}

func SortPathInfoBySize(pathInfos []PathInfo, ascending bool) {
	if ascending {
		sort.SliceStable(pathInfos, func(i, j int) bool {
			return pathInfos[i].Size < pathInfos[j].Size
		})
	} else {
		sort.SliceStable(pathInfos, func(i, j int) bool {
			return pathInfos[i].Size > pathInfos[j].Size
		})
	}
}

func SortPathInfoByPath(pathInfos []PathInfo, ascending bool) {
	if ascending {
		sort.Slice(pathInfos, func(i, j int) bool {
			return pathInfos[i].Path < pathInfos[j].Path
		})
	} else {
		sort.Slice(pathInfos, func(i, j int) bool {
			return pathInfos[i].Path > pathInfos[j].Path
		})
	}
}

func ShufflePathInfos(pathInfos []PathInfo) {
	for i := len(pathInfos) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		pathInfos[i], pathInfos[j] = pathInfos[j], pathInfos[i]
	}
}

// ReorderPaths
// Applies a sort spec in place: `size_ascending`, `size_descending`,
// `path_ascending`, `path_descending` or `random`. An empty spec keeps the
// glob order.
func ReorderPaths(pathInfos []PathInfo, sortSpec string) error {
	switch sortSpec {
	case "":
	case "size_ascending":
		SortPathInfoBySize(pathInfos, true)
	case "size_descending":
		SortPathInfoBySize(pathInfos, false)
	case "path_ascending":
		SortPathInfoByPath(pathInfos, true)
	case "path_descending":
		SortPathInfoByPath(pathInfos, false)
	case "random", "shuffle":
		ShufflePathInfos(pathInfos)
	default:
		return errors.Wrapf(ErrInvalidSortSpec, "%q", sortSpec)
	}
	return nil
}

// FindNewestPath
// Returns the path and modified time of the most recently modified entry.
func FindNewestPath(paths []PathInfo) (path string, newest time.Time,
	err error) {
	if len(paths) == 0 {
		return "", time.Time{}, ErrNoFiles
	}
	for _, pathInfo := range paths {
		if path == "" || newest.Before(pathInfo.ModTime) {
			newest = pathInfo.ModTime
			path = pathInfo.Path
		}
	}
	return path, newest, nil
}
