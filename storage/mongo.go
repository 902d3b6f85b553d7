// Package storage provides the persistence collaborators for games and
// players: a MongoDB-backed store for deployments and an in-memory store
// for tests and storeless local runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sai-kaneko-31/ito/domain"
)

type MongoStore struct {
	client  *mongo.Client
	games   *mongo.Collection
	players *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:  client,
		games:   db.Collection("games"),
		players: db.Collection("players"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.games.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.players.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "gameId", Value: 1}}},
		{Keys: bson.D{{Key: "socketId", Value: 1}}},
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapGameErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrGameNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.UnexpectedStoreError, err)
	}
}

func mapPlayerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrPlayerNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.UnexpectedStoreError, err)
	}
}

func (s *MongoStore) FindGameByCode(ctx context.Context, code string) (domain.Game, error) {
	var g domain.Game
	err := s.games.FindOne(ctx, bson.M{"roomCode": strings.ToUpper(code)}).Decode(&g)
	return g, mapGameErr(err)
}

func (s *MongoStore) FindGameByID(ctx context.Context, id string) (domain.Game, error) {
	var g domain.Game
	err := s.games.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, mapGameErr(err)
}

func (s *MongoStore) InsertGame(ctx context.Context, g domain.Game) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.games.InsertOne(ctx, g)
	return mapGameErr(err)
}

func (s *MongoStore) UpdateGame(ctx context.Context, g domain.Game) error {
	g.UpdatedAt = time.Now()
	res, err := s.games.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return mapGameErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (s *MongoStore) DeleteGame(ctx context.Context, id string) error {
	_, err := s.games.DeleteOne(ctx, bson.M{"_id": id})
	return mapGameErr(err)
}

func (s *MongoStore) ListPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.players.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, mapPlayerErr(err)
	}
	players := make([]domain.Player, 0, 8)
	if err := cur.All(ctx, &players); err != nil {
		return nil, mapPlayerErr(err)
	}
	return players, nil
}

func (s *MongoStore) FindPlayerByID(ctx context.Context, id string) (domain.Player, error) {
	var p domain.Player
	err := s.players.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, mapPlayerErr(err)
}

func (s *MongoStore) FindPlayerBySocketID(ctx context.Context, socketID string) (domain.Player, error) {
	var p domain.Player
	err := s.players.FindOne(ctx, bson.M{"socketId": socketID}).Decode(&p)
	return p, mapPlayerErr(err)
}

func (s *MongoStore) InsertPlayer(ctx context.Context, p domain.Player) error {
	_, err := s.players.InsertOne(ctx, p)
	return mapPlayerErr(err)
}

func (s *MongoStore) UpdatePlayer(ctx context.Context, p domain.Player) error {
	res, err := s.players.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapPlayerErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *MongoStore) DeletePlayer(ctx context.Context, id string) error {
	_, err := s.players.DeleteOne(ctx, bson.M{"_id": id})
	return mapPlayerErr(err)
}

func (s *MongoStore) DeletePlayersByGame(ctx context.Context, gameID string) error {
	_, err := s.players.DeleteMany(ctx, bson.M{"gameId": gameID})
	return mapPlayerErr(err)
}

func (s *MongoStore) AssignCards(ctx context.Context, cards map[string]int) error {
	if len(cards) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(cards))
	for id, card := range cards {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"cardNumber": card}}))
	}
	_, err := s.players.BulkWrite(ctx, models)
	return mapPlayerErr(err)
}

func (s *MongoStore) SetPositions(ctx context.Context, positions []domain.PlayerPosition) error {
	if len(positions) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(positions))
	for _, pos := range positions {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": pos.PlayerID}).
			SetUpdate(bson.M{"$set": bson.M{"position": pos.Position}}))
	}
	_, err := s.players.BulkWrite(ctx, models)
	return mapPlayerErr(err)
}

// PurgeIdleGames deletes games untouched since cutoff together with their
// players. Rooms under active use refresh updatedAt on every state write,
// so they never qualify.
func (s *MongoStore) PurgeIdleGames(ctx context.Context, cutoff time.Time) (int64, error) {
	cur, err := s.games.Find(ctx, bson.M{"updatedAt": bson.M{"$lt": cutoff}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, mapGameErr(err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return 0, mapGameErr(err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	if _, err := s.players.DeleteMany(ctx, bson.M{"gameId": bson.M{"$in": ids}}); err != nil {
		return 0, mapPlayerErr(err)
	}
	res, err := s.games.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, mapGameErr(err)
	}
	return res.DeletedCount, nil
}
