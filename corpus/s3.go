package corpus

import (
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const s3Scheme = "s3"

// S3Client is the subset of the S3 API the corpus reader uses.
type S3Client interface {
	ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output,
		error)
	GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain.
func NewS3Client(region string) (S3Client, error) {
	config := &aws.Config{}
	if region != "" {
		config.Region = aws.String(region)
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS session")
	}
	return s3.New(sess), nil
}

// IsS3URI reports whether location is an `s3://bucket/prefix` URI.
func IsS3URI(location string) bool {
	return strings.HasPrefix(location, s3Scheme+"://")
}

// ParseS3URI splits `s3://bucket/prefix` into its bucket and prefix.
func ParseS3URI(location string) (bucket string, prefix string, err error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return "", "", err
	}
	if parsed.Scheme != s3Scheme || parsed.Host == "" {
		return "", "", errors.Errorf("not an s3 uri: %s", location)
	}
	return parsed.Host, strings.TrimPrefix(parsed.Path, "/"), nil
}

// getObjectsS3Recursively sends every object under prefix to objects,
// following continuation tokens until the listing is exhausted.
func getObjectsS3Recursively(svc S3Client, bucket string, prefix string,
	objects chan<- *s3.Object) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	for {
		output, err := svc.ListObjectsV2(input)
		if err != nil {
			return errors.Wrapf(err, "listing s3://%s/%s", bucket, prefix)
		}
		for _, object := range output.Contents {
			objects <- object
		}
		if !aws.BoolValue(output.IsTruncated) ||
			output.NextContinuationToken == nil {
			return nil
		}
		input.ContinuationToken = output.NextContinuationToken
	}
}

// listS3 returns the objects under prefix whose keys end in one of exts.
func listS3(svc S3Client, bucket string, prefix string,
	exts []string) ([]PathInfo, error) {
	objects := make(chan *s3.Object, 64)
	listErr := make(chan error, 1)
	go func() {
		listErr <- getObjectsS3Recursively(svc, bucket, prefix, objects)
		close(objects)
	}()
	pathInfos := make([]PathInfo, 0)
	for object := range objects {
		key := aws.StringValue(object.Key)
		if strings.HasSuffix(key, "/") || !hasExtension(key, exts) {
			continue
		}
		pathInfos = append(pathInfos, PathInfo{
			Path:    "s3://" + bucket + "/" + key,
			Size:    aws.Int64Value(object.Size),
			ModTime: aws.TimeValue(object.LastModified),
		})
	}
	if err := <-listErr; err != nil {
		return nil, err
	}
	if len(pathInfos) == 0 {
		return nil, errors.Wrapf(ErrNoFiles, "s3://%s/%s", bucket, prefix)
	}
	log.Info().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("objects", len(pathInfos)).
		Msg("listed s3 objects")
	return pathInfos, nil
}

// fetchS3 opens a single object for reading.
func fetchS3(svc S3Client, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(location)
	if err != nil {
		return nil, err
	}
	output, err := svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", location)
	}
	return output.Body, nil
}

func hasExtension(key string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	for _, want := range exts {
		if ext == strings.TrimPrefix(want, ".") {
			return true
		}
	}
	return false
}
