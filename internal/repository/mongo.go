package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ROAMMATE_BACK-END/internal/models"
)

// ListingsCollection is the collection trips are stored in.
const ListingsCollection = "trips"

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// MongoListingRepository stores listings as documents, with join requests in
// a pendingMembers array on the trip document.
type MongoListingRepository struct {
	coll *mongo.Collection
}

func NewMongoListingRepository(db *mongo.Database) *MongoListingRepository {
	return &MongoListingRepository{coll: db.Collection(ListingsCollection)}
}

func (r *MongoListingRepository) ListListings(ctx context.Context) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	out := []models.Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return out, nil
}

func (r *MongoListingRepository) GetListing(ctx context.Context, id string) (models.Listing, error) {
	var l models.Listing
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return l, ErrNotFound
	}
	if err != nil {
		return l, fmt.Errorf("find listing: %w", err)
	}
	return l, nil
}

func (r *MongoListingRepository) CreateListing(ctx context.Context, l models.Listing) (string, error) {
	if err := CheckCapacity(l); err != nil {
		return "", err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: listing %s already exists", ErrInvalidListing, l.ID)
		}
		return "", fmt.Errorf("insert listing: %w", err)
	}
	return l.ID, nil
}

func (r *MongoListingRepository) AddPendingMember(ctx context.Context, listingID, userID string) error {
	// Only match trips with a free place, or where the user already asked.
	filter := bson.M{
		"_id": listingID,
		"$or": bson.A{
			bson.M{"pendingMembers": userID},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$currentMemberCount", "$maxGroupSize"}}},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"pendingMembers": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("count listing: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrGroupFull
}
