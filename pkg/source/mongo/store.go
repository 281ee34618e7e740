package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/genetrack/pkg/cache"
	"github.com/matzehuels/genetrack/pkg/errors"
	"github.com/matzehuels/genetrack/pkg/genome"
)

const (
	// DefaultDatabase and DefaultCollection are used when Options leaves
	// them empty.
	DefaultDatabase   = "genetrack"
	DefaultCollection = "features"

	// DefaultTrack is the track name used when none is given.
	DefaultTrack = "default"

	insertBatchSize = 1000
	connectTimeout  = 10 * time.Second
)

// Options configures [Connect].
type Options struct {
	URI        string
	Database   string
	Collection string
	Track      string
}

// Store reads and writes the features of one track.
type Store struct {
	client  *mongodriver.Client
	coll    *mongodriver.Collection
	track   string
	backoff cache.Backoff
}

// Connect dials MongoDB, verifies the connection and returns a Store for
// opts.Track.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	client, err := mongodriver.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo uri")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return classify(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}

	s := New(client.Database(opts.Database).Collection(opts.Collection), opts.Track)
	s.client = client
	return s, nil
}

// New wraps an existing collection. The caller keeps ownership of the
// client; Close on the returned Store is a no-op.
func New(coll *mongodriver.Collection, track string) *Store {
	if track == "" {
		track = DefaultTrack
	}
	return &Store{coll: coll, track: track, backoff: cache.DefaultBackoff}
}

// WithTrack returns a Store for another track sharing the same connection.
func (s *Store) WithTrack(track string) *Store {
	c := *s
	if track == "" {
		track = DefaultTrack
	}
	c.track = track
	return &c
}

// Track returns the track this Store reads and writes.
func (s *Store) Track() string { return s.track }

// Name identifies the store in cache keys and logs.
func (s *Store) Name() string {
	return fmt.Sprintf("mongo:%s.%s/%s", s.coll.Database().Name(), s.coll.Name(), s.track)
}

// Features returns the track's features overlapping region, ordered by
// start.
func (s *Store) Features(ctx context.Context, region genome.Region) ([]genome.Feature, error) {
	var features []genome.Feature
	err := s.backoff.Retry(ctx, func() error {
		cur, err := s.coll.Find(ctx, overlapFilter(s.track, region),
			options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
		if err != nil {
			return classify(err)
		}
		defer cur.Close(ctx)

		var docs []featureDoc
		if err := cur.All(ctx, &docs); err != nil {
			return classify(err)
		}
		features = make([]genome.Feature, len(docs))
		for i, d := range docs {
			features[i] = d.feature()
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr(err, "query %s in %s", region, s.Name())
	}
	return features, nil
}

// Insert stores features in batches and returns the number written.
// Inserts are unordered, so one bad document does not stop a batch.
func (s *Store) Insert(ctx context.Context, features []genome.Feature) (int, error) {
	written := 0
	for start := 0; start < len(features); start += insertBatchSize {
		end := min(start+insertBatchSize, len(features))
		docs := make([]any, 0, end-start)
		for _, f := range features[start:end] {
			docs = append(docs, newFeatureDoc(s.track, f))
		}

		err := s.backoff.Retry(ctx, func() error {
			res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
			if res != nil {
				written += len(res.InsertedIDs)
			}
			if err != nil {
				// Retrying a partially applied unordered batch would
				// duplicate the documents that made it.
				if res != nil && len(res.InsertedIDs) > 0 {
					return err
				}
				return classify(err)
			}
			return nil
		})
		if err != nil {
			return written, wrapErr(err, "insert into %s", s.Name())
		}
	}
	return written, nil
}

// Replace deletes the track and inserts features in its place.
func (s *Store) Replace(ctx context.Context, features []genome.Feature) (int, error) {
	if _, err := s.Delete(ctx); err != nil {
		return 0, err
	}
	return s.Insert(ctx, features)
}

// Delete removes every feature of the track and returns how many there were.
func (s *Store) Delete(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "track", Value: s.track}})
	if err != nil {
		return 0, wrapErr(classify(err), "delete %s", s.Name())
	}
	return res.DeletedCount, nil
}

// Count returns the number of features in the track.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "track", Value: s.track}})
	if err != nil {
		return 0, wrapErr(classify(err), "count %s", s.Name())
	}
	return n, nil
}

// Tracks lists the distinct track names in the collection.
func (s *Store) Tracks(ctx context.Context) ([]string, error) {
	vals, err := s.coll.Distinct(ctx, "track", bson.D{})
	if err != nil {
		return nil, wrapErr(classify(err), "list tracks")
	}
	tracks := make([]string, 0, len(vals))
	for _, v := range vals {
		if name, ok := v.(string); ok {
			tracks = append(tracks, name)
		}
	}
	return tracks, nil
}

// EnsureIndexes creates the overlap query index if it does not exist.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{
			{Key: "track", Value: 1},
			{Key: "chrom", Value: 1},
			{Key: "start", Value: 1},
			{Key: "end", Value: 1},
		},
		Options: options.Index().SetName("track_interval"),
	})
	if err != nil {
		return wrapErr(classify(err), "create index")
	}
	return nil
}

// Close disconnects the client opened by [Connect].
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// overlapFilter matches features with start < region.End and
// end > region.Start. The chromosome is only constrained when the region
// names one.
func overlapFilter(track string, region genome.Region) bson.D {
	filter := bson.D{{Key: "track", Value: track}}
	if region.Chrom != "" {
		filter = append(filter, bson.E{Key: "chrom", Value: region.Chrom})
	}
	return append(filter,
		bson.E{Key: "start", Value: bson.D{{Key: "$lt", Value: region.End}}},
		bson.E{Key: "end", Value: bson.D{{Key: "$gt", Value: region.Start}}},
	)
}

// classify marks transient driver errors as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongodriver.IsNetworkError(err) || mongodriver.IsTimeout(err) {
		return cache.Retryable(err)
	}
	return err
}

func wrapErr(err error, format string, args ...any) error {
	code := errors.ErrCodeInternal
	switch {
	case cache.IsRetryable(err):
		code = errors.ErrCodeNetwork
	case mongodriver.IsTimeout(err):
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, err, format, args...)
}
