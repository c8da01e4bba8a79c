// Package geocache provides the GORM-backed persistent caches for
// geocoding results and pairwise travel costs. Entries never expire:
// addresses and road distances are treated as static reference data, and
// a stale row costs at most one suboptimal leg, never a failure.
package geocache

import (
	"context"
	"errors"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeocodeEntryDTO is one cached geocode result keyed by address hash.
type GeocodeEntryDTO struct {
	AddressHash string `gorm:"type:char(64);primaryKey"`
	Lat         float64
	Lng         float64
	Provider    string `gorm:"type:varchar(32)"`
}

// TableName overrides GORM's default naming to use "geocode_cache".
func (GeocodeEntryDTO) TableName() string {
	return "geocode_cache"
}

// DistanceEntryDTO is one cached directed leg keyed by the ordered pair
// of point hashes.
type DistanceEntryDTO struct {
	OriginHash      string `gorm:"type:char(64);primaryKey"`
	DestinationHash string `gorm:"type:char(64);primaryKey"`
	DistanceM       int
	DurationS       int
	Provider        string `gorm:"type:varchar(32)"`
}

// TableName overrides GORM's default naming to use "distance_cache".
func (DistanceEntryDTO) TableName() string {
	return "distance_cache"
}

// GormGeocodeCache implements ports.GeocodeCache on PostgreSQL.
type GormGeocodeCache struct {
	db *gorm.DB
}

func NewGormGeocodeCache(db *gorm.DB) *GormGeocodeCache {
	return &GormGeocodeCache{db: db}
}

// Get returns the cached coordinate for an address hash, or nil on miss.
func (c *GormGeocodeCache) Get(ctx context.Context, addressHash string) (*ports.CachedCoordinate, error) {
	var dto GeocodeEntryDTO
	err := c.db.WithContext(ctx).First(&dto, "address_hash = ?", addressHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	point, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return &ports.CachedCoordinate{
		AddressHash: dto.AddressHash,
		Point:       point,
		Provider:    dto.Provider,
	}, nil
}

// Put persists a cache entry. Concurrent resolvers may race on the same
// address; the first insert wins and later ones are ignored.
func (c *GormGeocodeCache) Put(ctx context.Context, entry ports.CachedCoordinate) error {
	dto := GeocodeEntryDTO{
		AddressHash: entry.AddressHash,
		Lat:         entry.Point.Lat(),
		Lng:         entry.Point.Lng(),
		Provider:    entry.Provider,
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}

// GormDistanceCache implements ports.DistanceCache on PostgreSQL.
type GormDistanceCache struct {
	db *gorm.DB
}

func NewGormDistanceCache(db *gorm.DB) *GormDistanceCache {
	return &GormDistanceCache{db: db}
}

// Get returns the cached leg for a directed pair, or nil on miss.
func (c *GormDistanceCache) Get(ctx context.Context, originHash, destinationHash string) (*ports.CachedLeg, error) {
	var dto DistanceEntryDTO
	err := c.db.WithContext(ctx).
		First(&dto, "origin_hash = ? AND destination_hash = ?", originHash, destinationHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ports.CachedLeg{
		OriginHash:      dto.OriginHash,
		DestinationHash: dto.DestinationHash,
		Leg:             kernel.Leg{DistanceM: dto.DistanceM, DurationS: dto.DurationS},
		Provider:        dto.Provider,
	}, nil
}

// Put persists a cache entry, first insert wins.
func (c *GormDistanceCache) Put(ctx context.Context, entry ports.CachedLeg) error {
	dto := DistanceEntryDTO{
		OriginHash:      entry.OriginHash,
		DestinationHash: entry.DestinationHash,
		DistanceM:       entry.Leg.DistanceM,
		DurationS:       entry.Leg.DurationS,
		Provider:        entry.Provider,
	}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}
