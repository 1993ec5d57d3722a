// Package redis keeps dispatch offers in Redis. Each order's current batch is one
// hash, field per partner, that expires on its own after the retention window.
// A sorted set indexes batches by deadline for the expiry sweep.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

var ErrContended = errors.New("offer batch kept changing while being updated")

type offerRecord struct {
	Position  int       `json:"pos"`
	OfferedAt time.Time `json:"offeredAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Outcome   string    `json:"outcome"`
}

// OfferStore implements ports.DispatchOfferStore.
type OfferStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewOfferStore namespaces every key under prefix. A batch hash lives for its
// timeout plus retention, long enough for the broadcast status query.
func NewOfferStore(client redis.UniversalClient, prefix string, retention time.Duration) *OfferStore {
	return &OfferStore{client: client, prefix: prefix, retention: retention}
}

func (s *OfferStore) batchKey(orderID kernel.UUID) string {
	return fmt.Sprintf("%s:offers:%s", s.prefix, orderID)
}

func (s *OfferStore) dueKey() string {
	return s.prefix + ":offers:due"
}

func (s *OfferStore) Replace(ctx context.Context, batch *dispatch.Broadcast) error {
	fields := make(map[string]any, len(batch.Offers()))
	for i, offer := range batch.Offers() {
		raw, err := json.Marshal(offerRecord{
			Position:  i,
			OfferedAt: offer.OfferedAt(),
			ExpiresAt: offer.ExpiresAt(),
			Outcome:   string(offer.Outcome()),
		})
		if err != nil {
			return err
		}
		fields[offer.PartnerID().String()] = raw
	}

	key := s.batchKey(batch.OrderID())
	ttl := time.Until(batch.ExpiresAt()) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) == 0 {
			pipe.ZRem(ctx, s.dueKey(), batch.OrderID().String())
			return nil
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		pipe.ZAdd(ctx, s.dueKey(), redis.Z{
			Score:  float64(batch.ExpiresAt().UnixMilli()),
			Member: batch.OrderID().String(),
		})
		return nil
	})
	return err
}

func (s *OfferStore) Get(ctx context.Context, orderID kernel.UUID) (*dispatch.Broadcast, error) {
	raw, err := s.client.HGetAll(ctx, s.batchKey(orderID)).Result()
	if err != nil {
		return nil, err
	}
	return decodeBatch(orderID, raw)
}

func (s *OfferStore) Resolve(ctx context.Context, orderID, winner kernel.UUID) error {
	_, err := s.update(ctx, orderID, func(offer dispatch.Offer) (dispatch.Offer, error) {
		if offer.PartnerID().IsEqual(winner) {
			return offer.Resolve(dispatch.OutcomeAccepted)
		}
		return offer.Resolve(dispatch.OutcomeWithdrawn)
	})
	return err
}

func (s *OfferStore) WithdrawAll(ctx context.Context, orderID kernel.UUID) error {
	_, err := s.update(ctx, orderID, func(offer dispatch.Offer) (dispatch.Offer, error) {
		return offer.Resolve(dispatch.OutcomeWithdrawn)
	})
	return err
}

// ExpireDue walks the batches whose deadline has passed and marks their pending
// offers expired.
func (s *OfferStore) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.client.ZRangeByScoreWithScores(ctx, s.dueKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, entry := range due {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}

		orderID, parseErr := kernel.UUIDFromString(member)
		if parseErr != nil {
			s.client.ZRem(ctx, s.dueKey(), member)
			continue
		}

		changed, updateErr := s.update(ctx, orderID, func(offer dispatch.Offer) (dispatch.Offer, error) {
			if offer.Outcome() != dispatch.OutcomePending || now.Before(offer.ExpiresAt()) {
				return offer, nil
			}
			return offer.Resolve(dispatch.OutcomeExpired)
		})
		expired += changed
		if updateErr != nil {
			return expired, updateErr
		}

		if err = s.removeDue(ctx, member, entry.Score); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// removeDue drops member from the due index only while it still carries the
// deadline that was swept. A batch replaced in the meantime keeps its new entry.
func (s *OfferStore) removeDue(ctx context.Context, member string, score float64) error {
	for range maxWatchRetries {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.ZScore(ctx, s.dueKey(), member).Result()
			if errors.Is(err, redis.Nil) || (err == nil && current != score) {
				return nil
			}
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.ZRem(ctx, s.dueKey(), member)
				return nil
			})
			return err
		}, s.dueKey())
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrContended
}

// update rewrites the order's batch under WATCH so that a concurrent Replace or
// resolution is never overwritten, and returns how many offers changed. fn may run
// more than once and must not have side effects.
func (s *OfferStore) update(
	ctx context.Context,
	orderID kernel.UUID,
	fn func(dispatch.Offer) (dispatch.Offer, error),
) (int, error) {
	key := s.batchKey(orderID)

	for range maxWatchRetries {
		changedCount := 0
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				return nil
			}

			fields := make(map[string]any, len(raw))
			for field, value := range raw {
				var record offerRecord
				if err = json.Unmarshal([]byte(value), &record); err != nil {
					return err
				}
				offer, err := toOffer(orderID, field, record)
				if err != nil {
					return err
				}

				resolved, err := fn(offer)
				if err != nil {
					return err
				}
				if resolved.Outcome() == offer.Outcome() {
					continue
				}

				record.Outcome = string(resolved.Outcome())
				encoded, err := json.Marshal(record)
				if err != nil {
					return err
				}
				fields[field] = encoded
				changedCount++
			}

			if changedCount == 0 {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fields)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return changedCount, nil
	}

	return 0, ErrContended
}

func decodeBatch(orderID kernel.UUID, raw map[string]string) (*dispatch.Broadcast, error) {
	type positioned struct {
		pos   int
		offer dispatch.Offer
	}

	items := make([]positioned, 0, len(raw))
	for field, value := range raw {
		var record offerRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, err
		}
		offer, err := toOffer(orderID, field, record)
		if err != nil {
			return nil, err
		}
		items = append(items, positioned{pos: record.Position, offer: offer})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	offers := make([]dispatch.Offer, 0, len(items))
	for _, item := range items {
		offers = append(offers, item.offer)
	}
	return dispatch.RestoreBroadcast(orderID, offers)
}

func toOffer(orderID kernel.UUID, field string, record offerRecord) (dispatch.Offer, error) {
	partnerID, err := kernel.UUIDFromString(field)
	if err != nil {
		return dispatch.Offer{}, err
	}
	outcome, err := dispatch.ParseOutcome(record.Outcome)
	if err != nil {
		return dispatch.Offer{}, err
	}
	return dispatch.RestoreOffer(orderID, partnerID, record.OfferedAt, record.ExpiresAt, outcome)
}
