package redis

import "context"

func (s *OfferStore) RemoveDue(ctx context.Context, member string, score float64) error {
	return s.removeDue(ctx, member, score)
}
