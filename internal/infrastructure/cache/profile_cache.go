package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

const profileNamespace = "crewrelief:profile:"

// ProfileCache is a read-through Redis cache in front of a ProfileRepository.
// Match searches read many profiles per request, so hits save a store round
// trip each. Writes invalidate; Redis errors fall through to the repository.
type ProfileCache struct {
	inner ports.ProfileRepository
	rdb   redis.UniversalClient
	ttl   time.Duration
	log   zerolog.Logger
}

func NewProfileCache(inner ports.ProfileRepository, rdb redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

type cachedProfile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Surname           string    `json:"surname"`
	Email             string    `json:"email"`
	MobileNumber      string    `json:"mobileNumber"`
	Company           string    `json:"company"`
	FleetType         string    `json:"fleetWorking"`
	Rank              string    `json:"presentRank"`
	Status            string    `json:"currentStatus"`
	IsProfileVisible  bool      `json:"isProfileVisible"`
	ShowEmailToOthers bool      `json:"showEmailToOthers"`
	ShowPhoneToOthers bool      `json:"showPhoneToOthers"`
	PhotoURL          string    `json:"photoURL"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func encodeProfile(p *domain.UserProfile) ([]byte, error) {
	return json.Marshal(cachedProfile{
		ID: p.ID.String(), Name: p.Name, Surname: p.Surname, Email: p.Email,
		MobileNumber: p.MobileNumber, Company: p.Company, FleetType: p.FleetType, Rank: p.Rank,
		Status: string(p.Status), IsProfileVisible: p.IsProfileVisible,
		ShowEmailToOthers: p.ShowEmailToOthers, ShowPhoneToOthers: p.ShowPhoneToOthers,
		PhotoURL: p.PhotoURL, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	})
}

func decodeProfile(raw []byte) (*domain.UserProfile, error) {
	var c cachedProfile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(c.Status)
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		ID: domain.UserID(c.ID), Name: c.Name, Surname: c.Surname, Email: c.Email,
		MobileNumber: c.MobileNumber, Company: c.Company, FleetType: c.FleetType, Rank: c.Rank,
		Status: status, IsProfileVisible: c.IsProfileVisible,
		ShowEmailToOthers: c.ShowEmailToOthers, ShowPhoneToOthers: c.ShowPhoneToOthers,
		PhotoURL: c.PhotoURL, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}, nil
}

func (c *ProfileCache) Get(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	key := profileNamespace + id.String()
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if p, derr := decodeProfile(raw); derr == nil {
			return p, nil
		}
		c.log.Debug().Str("user_id", id.String()).Msg("discarding undecodable cached profile")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Msg("profile cache read failed")
	}
	p, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := encodeProfile(p); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("profile cache write failed")
		}
	}
	return p, nil
}

func (c *ProfileCache) Save(ctx context.Context, p *domain.UserProfile) error {
	if err := c.inner.Save(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *ProfileCache) Update(ctx context.Context, id domain.UserID, patch ports.ProfilePatch) error {
	if err := c.inner.Update(ctx, id, patch); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *ProfileCache) Delete(ctx context.Context, id domain.UserID) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *ProfileCache) invalidate(ctx context.Context, id domain.UserID) {
	if err := c.rdb.Del(ctx, profileNamespace+id.String()).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", id.String()).Msg("profile cache invalidation failed")
	}
}

var _ ports.ProfileRepository = (*ProfileCache)(nil)
