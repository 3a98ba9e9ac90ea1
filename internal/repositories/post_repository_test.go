package repositories

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTranslateFirestoreError(t *testing.T) {
	err := translateFirestoreError(status.Error(codes.FailedPrecondition, "The query requires an index."))
	assert.True(t, errors.Is(err, ErrPrecondition))
	assert.Contains(t, err.Error(), "requires an index")

	err = translateFirestoreError(status.Error(codes.NotFound, "no document"))
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.False(t, errors.Is(err, ErrPrecondition))

	unavailable := status.Error(codes.Unavailable, "try again")
	err = translateFirestoreError(unavailable)
	assert.Equal(t, unavailable, err)
	assert.False(t, errors.Is(err, ErrPrecondition))
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestFirestoreUpdates(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	updates := firestoreUpdates(map[string]interface{}{
		models.FieldLocation:     nil,
		models.FieldDescription:  "beach day",
		models.FieldOccurredAt:   when,
		models.FieldTaggedPeople: nil,
	})

	assert.Equal(t, []firestore.Update{
		{Path: models.FieldOccurredAt, Value: when},
		{Path: models.FieldDescription, Value: "beach day"},
		{Path: models.FieldLocation, Value: firestore.Delete},
		{Path: models.FieldTaggedPeople, Value: firestore.Delete},
	}, updates)
}

func TestMongoUpdate(t *testing.T) {
	update := mongoUpdate(map[string]interface{}{
		models.FieldDescription:  "beach day",
		models.FieldLocation:     nil,
		models.FieldTaggedPeople: nil,
	})
	assert.Equal(t, bson.M{
		"$set":   bson.M{models.FieldDescription: "beach day"},
		"$unset": bson.M{models.FieldLocation: "", models.FieldTaggedPeople: ""},
	}, update)

	onlySet := mongoUpdate(map[string]interface{}{models.FieldTags: []string{"trip"}})
	assert.Equal(t, bson.M{"$set": bson.M{models.FieldTags: []string{"trip"}}}, onlySet)

	onlyUnset := mongoUpdate(map[string]interface{}{models.FieldLocation: nil})
	assert.Equal(t, bson.M{"$unset": bson.M{models.FieldLocation: ""}}, onlyUnset)
}
