package mongodb

import (
	"context"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PrizeRepository implements the repositories.PrizeRepository interface
type PrizeRepository struct {
	collection *mongo.Collection
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(db *mongo.Database) repositories.PrizeRepository {
	return &PrizeRepository{
		collection: db.Collection("prize_configs"),
	}
}

// FindActiveByCampaign finds the active prize configuration for a campaign,
// in insertion order so wheel segments keep a stable layout
func (r *PrizeRepository) FindActiveByCampaign(ctx context.Context, campaignID string) ([]*models.PrizeConfig, error) {
	filter := bson.M{"campaignId": campaignID, "active": true}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prizes []*models.PrizeConfig
	if err := cursor.All(ctx, &prizes); err != nil {
		return nil, err
	}
	if prizes == nil {
		prizes = []*models.PrizeConfig{}
	}
	return prizes, nil
}

// Create inserts a prize configuration entry
func (r *PrizeRepository) Create(ctx context.Context, prize *models.PrizeConfig) error {
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = prize.CreatedAt
	res, err := r.collection.InsertOne(ctx, prize)
	if err != nil {
		return err
	}
	prize.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}
