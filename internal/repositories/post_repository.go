package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/memories/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPrecondition is returned when the store cannot serve a query yet,
// e.g. a composite index is still missing.
var ErrPrecondition = errors.New("query precondition failed")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, record *models.PostRecord) (string, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	QueryPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error)
	// UpdatePost writes only the given fields. A nil value removes the field.
	UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

type mongoPostDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	models.Post `bson:",inline"`
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, record *models.PostRecord) (string, error) {
	id := primitive.NewObjectID()
	doc := bson.M{"_id": id}
	for k, v := range record.Fields() {
		doc[k] = v
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id.Hex(), nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid post ID format", models.ErrNotFound)
	}

	var doc mongoPostDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	post := doc.toPost()
	return &post, nil
}

// QueryPosts retrieves posts matching q from MongoDB
func (r *MongoPostRepository) QueryPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	filter := bson.M{}
	if q.OwnerID != "" {
		filter[models.FieldOwnerID] = q.OwnerID
	}
	if q.TaggedUserID != "" {
		filter[models.FieldTaggedPeople] = q.TaggedUserID
	}
	findOptions := options.Find()
	if q.Ordered {
		findOptions.SetSort(bson.D{{Key: models.FieldOccurredAt, Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoPostDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(docs))
	for i := range docs {
		posts[i] = docs[i].toPost()
	}
	return posts, nil
}

// UpdatePost updates the given fields of an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid post ID format", models.ErrNotFound)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, mongoUpdate(fields))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid post ID format", models.ErrNotFound)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// mongoUpdate splits fields into $set and $unset; nil values are unset
func mongoUpdate(fields map[string]interface{}) bson.M {
	set := bson.M{}
	unset := bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (d *mongoPostDocument) toPost() models.Post {
	p := d.Post
	p.ID = d.ID.Hex()
	return p
}
