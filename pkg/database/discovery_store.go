package database

import (
	"context"
	"errors"
	"time"

	"avrctl/pkg/models"

	"gorm.io/gorm"
)

// DiscoveryStore persists network-scan sightings. One row exists per
// (ip_address, port); repeated sightings refresh LastSeen instead of piling
// up duplicates.
type DiscoveryStore struct {
	db *gorm.DB
}

func NewDiscoveryStore(db *gorm.DB) *DiscoveryStore {
	return &DiscoveryStore{db: db}
}

// RecordSighting upserts a discovered receiver by address.
func (store *DiscoveryStore) RecordSighting(ctx context.Context, sighting *models.DiscoveredReceiver) error {
	var existing models.DiscoveredReceiver
	err := store.db.WithContext(ctx).
		Where("ip_address = ? AND port = ?", sighting.IPAddress, sighting.Port).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		sighting.LastSeen = time.Now().UTC()
		sighting.DiscoveredAt = sighting.LastSeen
		sighting.IsActive = true
		return store.db.WithContext(ctx).Create(sighting).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]any{
		"last_seen": time.Now().UTC(),
		"is_active": true,
	}
	if sighting.Hostname != "" {
		updates["hostname"] = sighting.Hostname
	}
	if sighting.FriendlyName != "" {
		updates["friendly_name"] = sighting.FriendlyName
	}
	if sighting.ReceiverID != nil {
		updates["receiver_id"] = *sighting.ReceiverID
	}
	if sighting.DiscoveryMethod != "" {
		updates["discovery_method"] = sighting.DiscoveryMethod
	}
	return store.db.WithContext(ctx).Model(&existing).Updates(updates).Error
}

// MarkStale deactivates rows not sighted since the cutoff. Rows are kept for
// the admin surface rather than deleted.
func (store *DiscoveryStore) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := store.db.WithContext(ctx).
		Model(&models.DiscoveredReceiver{}).
		Where("is_active = ? AND last_seen < ?", true, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
