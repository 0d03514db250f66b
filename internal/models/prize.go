package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeConfig defines one wheel segment for a campaign. Weights are relative
// and do not need to sum to 100. BackgroundColor and FontSize are passed
// through to the wheel widget untouched.
type PrizeConfig struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CampaignID      string             `bson:"campaignId" json:"campaign_id"`
	Value           int                `bson:"value" json:"prize_value"`
	Label           string             `bson:"label" json:"prize_label"`
	Weight          int                `bson:"weight" json:"weight"`
	BackgroundColor string             `bson:"backgroundColor,omitempty" json:"background_color,omitempty"`
	FontSize        string             `bson:"fontSize,omitempty" json:"font_size,omitempty"`
	Active          bool               `bson:"active" json:"active"`
	CreatedAt       time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"-"`
}
