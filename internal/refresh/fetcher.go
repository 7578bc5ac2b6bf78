package refresh

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// maxListBytes caps a single downloaded list
const maxListBytes = 64 << 20

// Fetcher downloads the raw contents of one list source
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// HTTPFetcher downloads lists over HTTP(S), retrying transient failures
// with exponential backoff and jitter
type HTTPFetcher struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *zap.Logger
}

// NewHTTPFetcher creates a new HTTP list fetcher
func NewHTTPFetcher(timeout time.Duration, maxRetries int, logger *zap.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		logger:     logger,
	}
}

// Fetch downloads source. 429 and 5xx responses and network errors are
// retried; other non-2xx responses fail at once.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.calculateDelay(attempt)
			f.logger.Debug("Retrying list download",
				zap.String("source", source),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("download of %s cancelled: %w", source, lastErr)
			}
		}

		body, retry, err := f.fetchOnce(ctx, source)
		if err == nil {
			return body, nil
		}
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, source string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid source %s: %w", source, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to download %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, isRetryableStatus(resp.StatusCode), fmt.Errorf("download of %s returned status %d", source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return body, false, nil
}

// calculateDelay returns a full-jitter exponential backoff of at least 100ms
func (f *HTTPFetcher) calculateDelay(attempt int) time.Duration {
	expDelay := float64(f.baseDelay) * math.Pow(2, float64(attempt-1))
	if expDelay > float64(f.maxDelay) {
		expDelay = float64(f.maxDelay)
	}

	jittered := time.Duration(rand.Float64() * expDelay)
	if jittered < 100*time.Millisecond {
		jittered = 100 * time.Millisecond
	}
	return jittered
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// S3API is the part of the S3 client used to read list objects
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads lists stored as s3://bucket/key objects
type S3Fetcher struct {
	client S3API
}

// NewS3Fetcher creates an S3 fetcher using the default AWS credential chain
func NewS3Fetcher(ctx context.Context, region string) (*S3Fetcher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for list source: %w", err)
	}
	return &S3Fetcher{client: s3.NewFromConfig(cfg)}, nil
}

// NewS3FetcherWithClient creates an S3 fetcher around an existing client
func NewS3FetcherWithClient(client S3API) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// Fetch downloads an s3://bucket/key object
func (f *S3Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("invalid S3 source %s", source)
	}
	bucket, key := u.Host, strings.TrimLeft(u.Path, "/")
	if key == "" {
		return nil, fmt.Errorf("S3 source %s has no object key", source)
	}

	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListBytes))
	if err != nil {
		return nil, fmt.Errorf("reading S3 object body: %w", err)
	}
	return body, nil
}

// SchemeFetcher routes each source to the fetcher registered for its URL scheme
type SchemeFetcher struct {
	fetchers map[string]Fetcher
}

// NewSchemeFetcher creates a router. http and https share the HTTP fetcher;
// s3 may be nil when no S3 sources are configured.
func NewSchemeFetcher(httpFetcher Fetcher, s3Fetcher Fetcher) *SchemeFetcher {
	fetchers := map[string]Fetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
	}
	if s3Fetcher != nil {
		fetchers["s3"] = s3Fetcher
	}
	return &SchemeFetcher{fetchers: fetchers}
}

// Fetch dispatches source by scheme
func (f *SchemeFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", source, err)
	}
	fetcher, ok := f.fetchers[u.Scheme]
	if !ok || fetcher == nil {
		return nil, fmt.Errorf("unsupported source scheme %q in %s", u.Scheme, source)
	}
	return fetcher.Fetch(ctx, source)
}
