package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/novacoeur/lovepage-api/models"
	"github.com/novacoeur/lovepage-api/utils"
)

const lovePagesCollection = "love_pages"

// MongoLovePageRepository stores one document per record in the
// love_pages collection. Soft delete marks status=deleted; the document
// stays in the collection and per-document atomicity comes from the
// engine itself.
type MongoLovePageRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	alloc  *PageIDAllocator
}

// NewMongoLovePageRepository wraps an established client. Call
// EnsureIndexes once at startup before serving traffic.
func NewMongoLovePageRepository(client *mongo.Client, database string, alloc *PageIDAllocator) *MongoLovePageRepository {
	if alloc == nil {
		alloc = NewPageIDAllocator()
	}
	return &MongoLovePageRepository{
		client: client,
		coll:   client.Database(database).Collection(lovePagesCollection),
		alloc:  alloc,
	}
}

// EnsureIndexes creates the unique page-id index and the createdAt
// listing index, and seeds the allocator past the highest stored id.
func (r *MongoLovePageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "clientName", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create love page indexes: %w", err)
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})
	var latest models.LovePage
	err = r.coll.FindOne(ctx, bson.M{}, opts).Decode(&latest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("failed to seed id allocator: %w", err)
	}
	r.alloc.Seed(latest.ID)
	return nil
}

func (r *MongoLovePageRepository) List(ctx context.Context, excludeDeleted bool) ([]*models.LovePage, error) {
	filter := bson.M{}
	if excludeDeleted {
		filter["status"] = bson.M{"$ne": models.StatusDeleted}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list love pages: %w", err)
	}
	defer cursor.Close(ctx)

	var pages []*models.LovePage
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode love pages: %w", err)
	}
	return pages, nil
}

func (r *MongoLovePageRepository) ByPageID(ctx context.Context, id int64) (*models.LovePage, error) {
	var page models.LovePage
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&page)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find love page %d: %w", id, err)
	}
	return &page, nil
}

func (r *MongoLovePageRepository) ByFilter(ctx context.Context, filter models.LovePageFilter) ([]*models.LovePage, error) {
	query := bson.M{}
	if filter.ID != nil {
		query["id"] = *filter.ID
	}
	if filter.ClientName != nil {
		query["clientName"] = *filter.ClientName
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.CreatedAfter != nil || filter.CreatedBefore != nil {
		created := bson.M{}
		if filter.CreatedAfter != nil {
			created["$gte"] = *filter.CreatedAfter
		}
		if filter.CreatedBefore != nil {
			created["$lt"] = *filter.CreatedBefore
		}
		query["createdAt"] = created
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter love pages: %w", err)
	}
	defer cursor.Close(ctx)

	var pages []*models.LovePage
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode love pages: %w", err)
	}
	return pages, nil
}

func (r *MongoLovePageRepository) Create(ctx context.Context, draft *models.LovePageDraft) (*models.LovePage, error) {
	now := utils.UTCNow()
	page := &models.LovePage{
		ID:          r.alloc.Next(),
		ClientName:  draft.ClientName,
		ClientEmail: draft.ClientEmail,
		PhoneNumber: draft.PhoneNumber,
		Message:     draft.Message,
		Offer:       draft.Offer,
		Photos:      draft.Photos,
		Videos:      draft.Videos,
		Music:       draft.Music,
		Status:      models.StatusActive,
		PageLink:    draft.PageLink,
		QRCodeURL:   draft.QRCodeURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to insert love page: %w", err)
	}
	return page, nil
}

func (r *MongoLovePageRepository) Update(ctx context.Context, id int64, patch *models.LovePagePatch) (*models.LovePage, error) {
	set := bson.M{"updatedAt": utils.UTCNow()}
	if patch != nil {
		if patch.ClientName != nil {
			set["clientName"] = *patch.ClientName
		}
		if patch.ClientEmail != nil {
			set["clientEmail"] = *patch.ClientEmail
		}
		if patch.PhoneNumber != nil {
			set["phoneNumber"] = *patch.PhoneNumber
		}
		if patch.Message != nil {
			set["message"] = *patch.Message
		}
		if patch.Offer != nil {
			set["offer"] = *patch.Offer
		}
		if patch.Photos != nil {
			set["photos"] = patch.Photos
		}
		if patch.Videos != nil {
			set["videos"] = patch.Videos
		}
		if patch.Music != nil {
			set["music"] = patch.Music
		}
		if patch.Status != nil {
			set["status"] = *patch.Status
		}
		if patch.PageLink != nil {
			set["pageLink"] = *patch.PageLink
		}
		if patch.QRCodeURL != nil {
			set["qrCodeUrl"] = *patch.QRCodeURL
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var page models.LovePage
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&page)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update love page %d: %w", id, err)
	}
	return &page, nil
}

func (r *MongoLovePageRepository) SoftDelete(ctx context.Context, id int64) (*models.LovePage, error) {
	status := models.StatusDeleted
	return r.Update(ctx, id, &models.LovePagePatch{Status: &status})
}

func (r *MongoLovePageRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count love pages: %w", err)
	}
	return n, nil
}

func (r *MongoLovePageRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
