// internal/output/mongodb.go
package output

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valpere/ProfileScrapexter/internal/utils"
)

// MongoDBOptions configures a MongoDBWriter.
type MongoDBOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	Logger     utils.Logger
}

// MongoDBWriter stores one document per run, keyed by run id.
type MongoDBWriter struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	logger     utils.Logger
}

// runDocument is the stored shape of one run.
type runDocument struct {
	ID        string      `bson:"_id"`
	Username  string      `bson:"username"`
	ScrapedAt time.Time   `bson:"scraped_at"`
	Error     string      `bson:"error,omitempty"`
	Profile   *ProfileRow `bson:"profile,omitempty"`
	Posts     []PostRow   `bson:"posts"`
}

// NewMongoDBWriter connects and verifies the server is reachable.
func NewMongoDBWriter(ctx context.Context, opts MongoDBOptions) (*MongoDBWriter, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("MongoDB connection string is required")
	}
	if opts.Database == "" {
		return nil, fmt.Errorf("MongoDB database name is required")
	}
	if opts.Collection == "" {
		opts.Collection = "runs"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = utils.NopLogger()
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI).SetRetryWrites(true))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collection := client.Database(opts.Database).Collection(opts.Collection)
	index := mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}, {Key: "scraped_at", Value: -1}}}
	if _, err := collection.Indexes().CreateOne(connectCtx, index); err != nil {
		opts.Logger.Warnf("failed to create MongoDB index: %v", err)
	}

	opts.Logger.Infof("connected to MongoDB database %s, collection %s", opts.Database, opts.Collection)
	return &MongoDBWriter{client: client, collection: collection, timeout: opts.Timeout, logger: opts.Logger}, nil
}

// newRunDocument builds the stored document of run.
func newRunDocument(run Run) runDocument {
	profile, posts := Flatten(run)
	doc := runDocument{
		ID:        run.ID,
		Username:  run.Username,
		ScrapedAt: profile.ScrapedAt,
		Error:     profile.Error,
		Posts:     posts,
	}
	if profile.Error == "" {
		doc.Profile = &profile
	}
	if doc.Posts == nil {
		doc.Posts = []PostRow{}
	}
	return doc
}

func (mw *MongoDBWriter) Write(ctx context.Context, run Run) error {
	writeCtx, cancel := context.WithTimeout(ctx, mw.timeout)
	defer cancel()

	if _, err := mw.collection.InsertOne(writeCtx, newRunDocument(run)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			mw.logger.Warnf("run %s already stored", run.ID)
			return nil
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (mw *MongoDBWriter) Close() error {
	if mw.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mw.timeout)
	defer cancel()
	err := mw.client.Disconnect(ctx)
	mw.client = nil
	return err
}
