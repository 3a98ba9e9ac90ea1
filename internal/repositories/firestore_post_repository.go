package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/memories/backend/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestorePostRepository implements PostRepository for Cloud Firestore
type FirestorePostRepository struct {
	collection *firestore.CollectionRef
}

// NewFirestorePostRepository creates a new FirestorePostRepository
func NewFirestorePostRepository(client *firestore.Client) *FirestorePostRepository {
	return &FirestorePostRepository{collection: client.Collection("posts")}
}

// CreatePost writes a new post document with a store-assigned id
func (r *FirestorePostRepository) CreatePost(ctx context.Context, record *models.PostRecord) (string, error) {
	ref := r.collection.NewDoc()
	if _, err := ref.Set(ctx, record.Fields()); err != nil {
		return "", translateFirestoreError(err)
	}
	return ref.ID, nil
}

// GetPostByID retrieves a post by ID from Firestore
func (r *FirestorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	snap, err := r.collection.Doc(id).Get(ctx)
	if err != nil {
		return nil, translateFirestoreError(err)
	}
	post, err := decodePost(snap)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// QueryPosts runs an equality / array-contains query. Combining a filter
// with Ordered needs a composite index; without one Firestore answers
// FailedPrecondition, surfaced as ErrPrecondition.
func (r *FirestorePostRepository) QueryPosts(ctx context.Context, q models.PostQuery) ([]models.Post, error) {
	query := r.collection.Query
	if q.OwnerID != "" {
		query = query.Where(models.FieldOwnerID, "==", q.OwnerID)
	}
	if q.TaggedUserID != "" {
		query = query.Where(models.FieldTaggedPeople, "array-contains", q.TaggedUserID)
	}
	if q.Ordered {
		query = query.OrderBy(models.FieldOccurredAt, firestore.Desc)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	posts := make([]models.Post, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translateFirestoreError(err)
		}
		post, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// UpdatePost applies a partial update to a post document
func (r *FirestorePostRepository) UpdatePost(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, err := r.collection.Doc(id).Update(ctx, firestoreUpdates(fields)); err != nil {
		return translateFirestoreError(err)
	}
	return nil
}

// DeletePost deletes a post document by ID
func (r *FirestorePostRepository) DeletePost(ctx context.Context, id string) error {
	if _, err := r.collection.Doc(id).Delete(ctx); err != nil {
		return translateFirestoreError(err)
	}
	return nil
}

// firestoreUpdates turns fields into updates sorted by path; nil values
// delete the field
func firestoreUpdates(fields map[string]interface{}) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		if v == nil {
			v = firestore.Delete
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Path < updates[j].Path })
	return updates
}

func decodePost(snap *firestore.DocumentSnapshot) (models.Post, error) {
	var post models.Post
	if err := snap.DataTo(&post); err != nil {
		return models.Post{}, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
	}
	post.ID = snap.Ref.ID
	return post, nil
}

func translateFirestoreError(err error) error {
	switch status.Code(err) {
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrPrecondition, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	return err
}
