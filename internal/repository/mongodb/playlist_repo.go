package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rudro/videotube-backend/internal/domain"
	"github.com/rudro/videotube-backend/internal/repository"
)

type PlaylistRepository struct {
	coll *mongo.Collection
}

func NewPlaylistRepository(s *Store) repository.PlaylistRepository {
	return &PlaylistRepository{coll: s.db.Collection(collPlaylists)}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *domain.Playlist) (*domain.Playlist, error) {
	now := time.Now()
	playlist.ID = bson.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []bson.ObjectID{}
	}
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, playlist); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

func (r *PlaylistRepository) Get(ctx context.Context, id bson.ObjectID) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("playlist")
		}
		return nil, fmt.Errorf("find playlist: %w", err)
	}
	return &playlist, nil
}

func (r *PlaylistRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]domain.Playlist, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer cursor.Close(ctx)

	var playlists []domain.Playlist
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, fmt.Errorf("decode playlists: %w", err)
	}
	return playlists, nil
}

// AddVideo uses $addToSet, so adding the same video twice leaves a single
// membership.
func (r *PlaylistRepository) AddVideo(ctx context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id, videoID bson.ObjectID) (*domain.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (r *PlaylistRepository) Update(ctx context.Context, id bson.ObjectID, name, description *string) (*domain.Playlist, error) {
	fields := bson.M{"updatedAt": time.Now()}
	if name != nil {
		fields["name"] = *name
	}
	if description != nil {
		fields["description"] = *description
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": fields})
}

func (r *PlaylistRepository) Delete(ctx context.Context, id bson.ObjectID) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("playlist")
		}
		return nil, fmt.Errorf("delete playlist: %w", err)
	}
	return &playlist, nil
}

func (r *PlaylistRepository) findOneAndUpdate(ctx context.Context, id bson.ObjectID, update bson.M) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("playlist")
		}
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return &playlist, nil
}
