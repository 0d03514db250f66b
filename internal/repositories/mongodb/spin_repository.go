package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SpinRepository implements the repositories.SpinRepository interface
type SpinRepository struct {
	collection *mongo.Collection
}

// NewSpinRepository creates a new SpinRepository
func NewSpinRepository(db *mongo.Database) repositories.SpinRepository {
	return &SpinRepository{
		collection: db.Collection("spins"),
	}
}

// EnsureIndexes creates the indexes the spins collection depends on. The
// unique (campaignId, phone) index is the authoritative single-spin guard;
// serving spin requests without it would reduce duplicate detection to the
// advisory pre-check.
func (r *SpinRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "campaignId", Value: 1}, {Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_campaign_phone"),
		},
		{
			Keys: bson.D{{Key: "campaignId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "discountId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create spin indexes: %w", err)
	}
	return nil
}

// Create inserts a new spin. A duplicate-key rejection from the unique
// (campaignId, phone) index is mapped to repositories.ErrDuplicatePhone.
func (r *SpinRepository) Create(ctx context.Context, spin *models.Spin) error {
	spin.CreatedAt = time.Now()
	spin.UpdatedAt = spin.CreatedAt
	res, err := r.collection.InsertOne(ctx, spin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicatePhone
		}
		return err
	}
	spin.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a spin by ID
func (r *SpinRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Spin, error) {
	var spin models.Spin
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&spin)
	if err != nil {
		return nil, err // mongo.ErrNoDocuments when not found
	}
	return &spin, nil
}

// FindByCampaignAndPhone finds the spin for a phone within a campaign
func (r *SpinRepository) FindByCampaignAndPhone(ctx context.Context, campaignID, phone string) (*models.Spin, error) {
	var spin models.Spin
	filter := bson.M{"campaignId": campaignID, "phone": phone}
	err := r.collection.FindOne(ctx, filter).Decode(&spin)
	if err != nil {
		return nil, err
	}
	return &spin, nil
}

// FindByCampaign finds all spins for a campaign, newest first
func (r *SpinRepository) FindByCampaign(ctx context.Context, campaignID string) ([]*models.Spin, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"campaignId": campaignID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var spins []*models.Spin
	if err := cursor.All(ctx, &spins); err != nil {
		return nil, err
	}
	if spins == nil {
		spins = []*models.Spin{}
	}
	return spins, nil
}

// FindActiveLinked finds active spins that have an external discount attached
func (r *SpinRepository) FindActiveLinked(ctx context.Context) ([]*models.Spin, error) {
	filter := bson.M{
		"status":     models.SpinStatusActive,
		"discountId": bson.M{"$gt": 0},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var spins []*models.Spin
	if err := cursor.All(ctx, &spins); err != nil {
		return nil, err
	}
	if spins == nil {
		spins = []*models.Spin{}
	}
	return spins, nil
}

// UpdateStatus sets a spin's status
func (r *SpinRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.SpinStatus) error {
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyDiscountSync attaches or refreshes the external discount mirror fields
func (r *SpinRepository) ApplyDiscountSync(ctx context.Context, id primitive.ObjectID, sync models.DiscountSync) error {
	update := bson.M{"$set": bson.M{
		"discountId":  sync.DiscountID,
		"isPromotion": sync.IsPromotion,
		"timesUsed":   sync.TimesUsed,
		"usageLimit":  sync.UsageLimit,
		"status":      sync.Status,
		"updatedAt":   time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearDiscountLink detaches the external discount and expires the spin.
// The row is kept so the phone stays consumed for the campaign.
func (r *SpinRepository) ClearDiscountLink(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"isPromotion": false,
			"timesUsed":   0,
			"usageLimit":  1,
			"status":      models.SpinStatusExpired,
			"updatedAt":   time.Now(),
		},
		"$unset": bson.M{"discountId": ""},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateNotifyResult records the webhook delivery outcome. Failures
// increment the retry counter; they never touch the spin's status.
func (r *SpinRepository) UpdateNotifyResult(ctx context.Context, id primitive.ObjectID, sent bool, response, errMsg string) error {
	set := bson.M{
		"n8nSent":     sent,
		"n8nResponse": response,
		"n8nError":    errMsg,
		"updatedAt":   time.Now(),
	}
	update := bson.M{"$set": set}
	if sent {
		set["n8nSentAt"] = time.Now()
	} else {
		update["$inc"] = bson.M{"n8nRetryCount": 1}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// GetStatistics aggregates a campaign's spins for the admin dashboard
func (r *SpinRepository) GetStatistics(ctx context.Context, campaignID string) (*models.SpinStatistics, error) {
	match := bson.D{{Key: "$match", Value: bson.M{"campaignId": campaignID}}}

	statusCond := func(status models.SpinStatus) bson.M {
		return bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, 1, 0,
		}}
	}
	valueCond := func(status models.SpinStatus) bson.M {
		return bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", status}}, "$prize", 0,
		}}
	}

	group := bson.D{{Key: "$group", Value: bson.M{
		"_id":          nil,
		"totalSpins":   bson.M{"$sum": 1},
		"activeCount":  bson.M{"$sum": statusCond(models.SpinStatusActive)},
		"usedCount":    bson.M{"$sum": statusCond(models.SpinStatusUsed)},
		"expiredCount": bson.M{"$sum": statusCond(models.SpinStatusExpired)},

		"totalPrizeValue": bson.M{"$sum": "$prize"},
		"activeValue":     bson.M{"$sum": valueCond(models.SpinStatusActive)},
		"usedValue":       bson.M{"$sum": valueCond(models.SpinStatusUsed)},

		"notifySuccessCount": bson.M{"$sum": bson.M{"$cond": bson.A{"$n8nSent", 1, 0}}},
		"notifyFailedCount": bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$and": bson.A{
				bson.M{"$eq": bson.A{"$n8nSent", false}},
				bson.M{"$gt": bson.A{"$n8nRetryCount", 0}},
			}}, 1, 0,
		}}},
	}}}

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{match, group})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate spin statistics: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &models.SpinStatistics{PrizeBreakdown: []models.PrizeCount{}}
	if cursor.Next(ctx) {
		if err := cursor.Decode(stats); err != nil {
			return nil, fmt.Errorf("failed to decode spin statistics: %w", err)
		}
	}

	// Per-prize breakdown as a second grouping; prize values are campaign
	// configuration, not a fixed set, so no hardcoded buckets here.
	prizeGroup := bson.D{{Key: "$group", Value: bson.M{
		"_id":   "$prize",
		"count": bson.M{"$sum": 1},
	}}}
	sort := bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}}

	prizeCursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{match, prizeGroup, sort})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate prize breakdown: %w", err)
	}
	defer prizeCursor.Close(ctx)

	if err := prizeCursor.All(ctx, &stats.PrizeBreakdown); err != nil {
		return nil, fmt.Errorf("failed to decode prize breakdown: %w", err)
	}
	if stats.PrizeBreakdown == nil {
		stats.PrizeBreakdown = []models.PrizeCount{}
	}

	return stats, nil
}
