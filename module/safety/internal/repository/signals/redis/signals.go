package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/service"
)

var _ service.SignalSource = (*SignalSource)(nil)

// ErrNoSignal means no reading is available for the cell. The score
// aggregator substitutes a neutral value; this is not a failure.
var ErrNoSignal = errors.New("no signal for cell")

// SignalSource reads crowd density and weather signals from redis, keyed by
// spatial grid cell. External feeds write the keys with a TTL; a missing or
// expired key surfaces as ErrNoSignal.
type SignalSource struct {
	client *goredis.Client
}

func NewSignalSource(client *goredis.Client) *SignalSource {
	return &SignalSource{client: client}
}

func (s *SignalSource) CrowdDensity(ctx context.Context, lat, lon float64) (float64, error) {
	return s.read(ctx, "signals:crowd:"+domain.GridCell(lat, lon))
}

func (s *SignalSource) Weather(ctx context.Context, lat, lon float64) (float64, error) {
	return s.read(ctx, "signals:weather:"+domain.GridCell(lat, lon))
}

func (s *SignalSource) read(ctx context.Context, key string) (float64, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, fmt.Errorf("%w: %s", ErrNoSignal, key)
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse signal %s: %w", key, err)
	}
	return v, nil
}
