// Package mongosource reads snapshots from a MongoDB collection that the
// orchestrator appends to. Each document is one snapshot with a "scope" and a
// "timestamp" field; the newest document for a scope wins.
package mongosource

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/taskgraph/pkg/errors"
	"github.com/matzehuels/taskgraph/pkg/graph"
)

// Config configures [Connect].
type Config struct {
	URI        string
	Database   string
	Collection string
}

// DefaultCollection is used when Config.Collection is empty.
const DefaultCollection = "graph_snapshots"

// finder is the subset of *mongo.Collection the source needs.
type finder interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// Source is a MongoDB snapshot source.
type Source struct {
	client *mongo.Client
	coll   finder
}

// Connect opens a client, pings the server and returns a Source.
func Connect(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri and database are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Filter returns the query selecting snapshots of scope. The empty scope
// matches every document.
func Filter(scope string) bson.M {
	if scope == "" {
		return bson.M{}
	}
	return bson.M{"scope": scope}
}

// GetGraphSnapshot returns the newest snapshot for scope.
func (s *Source) GetGraphSnapshot(ctx context.Context, scope string) (graph.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var snap graph.Snapshot
	err := s.coll.FindOne(ctx, Filter(scope), opts).Decode(&snap)
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return graph.Snapshot{}, errors.New(errors.ErrCodeNotFound, "no snapshot for scope %q", scope)
	case ctx.Err() != nil:
		return graph.Snapshot{}, ctx.Err()
	case err != nil:
		return graph.Snapshot{}, errors.Wrap(errors.ErrCodeNetwork, err, "query snapshot")
	}
	if snap.Scope == "" {
		snap.Scope = scope
	}
	return snap, nil
}

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
