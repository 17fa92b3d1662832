package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramType       string             `bson:"program_type" json:"program_type"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Partner           string             `bson:"partner" json:"partner"`
	EventVenue        string             `bson:"event_venue" json:"event_venue"`
	EventDate         string             `bson:"event_date" json:"event_date"` // ISO date, e.g. 2024-05-01
	BeneficiaryCount  *int               `bson:"beneficiary_count,omitempty" json:"beneficiary_count,omitempty"`
	BeneficiaryNote   string             `bson:"beneficiary_note,omitempty" json:"beneficiary_note,omitempty"`
	ContributionValue string             `bson:"contribution_value" json:"contribution_value"`
	ContributionNote  string             `bson:"contribution_note,omitempty" json:"contribution_note,omitempty"`
	MainImage         string             `bson:"main_image" json:"main_image"`
	Images            []string           `bson:"images" json:"images"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
