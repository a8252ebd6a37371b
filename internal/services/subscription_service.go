package services

import (
	"time"

	"github.com/caroarena/moderation-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionService resolves which analysis tier a user's plan pays for.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// ResolveTier returns "pro" when the user holds an active subscription and
// "basic" otherwise. Lookup failures degrade to basic.
func (s *SubscriptionService) ResolveTier(userID uuid.UUID) string {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error
	if err != nil {
		return models.TierBasic
	}
	if sub.IsActive(time.Now()) {
		return models.TierPro
	}
	return models.TierBasic
}

// GetSubscription returns the user's most recent subscription, if any.
func (s *SubscriptionService) GetSubscription(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
