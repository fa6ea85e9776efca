package lookup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/geolocus/geolocus/config"
	"github.com/geolocus/geolocus/providers"
)

// DefaultWorkerPoolSize bounds how many bulk lookups may run at once.
const DefaultWorkerPoolSize = 64

const workerPoolExpiry = time.Minute

// Resolver turns textual IP addresses into shaped responses using a single
// database provider and the configured output toggles.
type Resolver struct {
	provider providers.Provider
	outputs  config.Outputs
	stats    *UsageStats
	pool     *ants.Pool
	log      zerolog.Logger
}

// NewResolver wires a provider to the output shape. poolSize <= 0 selects
// DefaultWorkerPoolSize.
func NewResolver(provider providers.Provider,
	outputs config.Outputs,
	poolSize int,
	log zerolog.Logger) (*Resolver, error) {
	if poolSize <= 0 {
		poolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPool(poolSize, ants.WithExpiryDuration(workerPoolExpiry))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	return &Resolver{
		provider: provider,
		outputs:  outputs,
		stats:    &UsageStats{Name: provider.Name()},
		pool:     pool,
		log:      log,
	}, nil
}

// Lookup resolves one address. The returned response is always usable; a
// non-nil error explains why parts of it are missing, either because the
// input does not parse or because the database has no record for it.
func (r *Resolver) Lookup(ctx context.Context, ip string) (Response, error) {
	response, err := r.lookup(ctx, ip)
	r.stats.Used(err)

	return response, err
}

func (r *Resolver) lookup(ctx context.Context, ip string) (Response, error) {
	parsed, version := ipVersion(ip)
	if version == 0 {
		return r.shape(ip, version, nil), fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	if !r.outputs.WantsGeolocation() {
		return r.shape(ip, version, nil), nil
	}

	record, err := r.provider.Get(ctx, parsed)
	if err != nil {
		return r.shape(ip, version, nil), fmt.Errorf("lookup failed: %w", err)
	}

	if record == nil {
		return r.shape(ip, version, nil), fmt.Errorf("%w: %q", ErrNoRecord, ip)
	}

	return r.shape(ip, version, record), nil
}

// shape builds the response a given record supports. Field extraction is
// best-effort: a nil record simply yields no geolocation fields.
func (r *Resolver) shape(ip string, version int, record providers.Record) Response {
	response := Response{}

	if r.outputs.IP {
		response.IP = &ip
	}

	if r.outputs.IPVersion {
		response.IPVersion = &version
	}

	if r.outputs.Country {
		if value, ok := r.provider.StringValue(record, providers.FieldCountry); ok {
			response.Country = value
		}
	}

	if r.outputs.Subdivision {
		if value, ok := r.provider.StringValue(record, providers.FieldSubdivision); ok {
			response.Subdivision = value
		}
	}

	if r.outputs.Data && record != nil {
		response.Data = record
	}

	return response
}

// LookupMany resolves a batch concurrently on the worker pool, keeping the
// input order in the result. Per-address failures are logged here and the
// response at that position stays best-effort, exactly as in Lookup.
func (r *Resolver) LookupMany(ctx context.Context, ips []string) []Response {
	responses := make([]Response, len(ips))
	wg := &sync.WaitGroup{}

	for i, ip := range ips {
		i, ip := i, ip

		wg.Add(1)

		task := func() {
			defer wg.Done()

			response, err := r.Lookup(ctx, ip)
			if err != nil {
				r.log.Warn().Err(err).Str("ip", ip).Msg("cannot resolve ip address")
			}

			responses[i] = response
		}

		if err := r.pool.Submit(task); err != nil {
			r.log.Warn().Err(err).Msg("worker pool rejected a lookup, running it inline")
			task()
		}
	}

	wg.Wait()

	return responses
}

// Stats exposes the usage counters for the stats endpoint.
func (r *Resolver) Stats() *UsageStats {
	return r.stats
}

// Shutdown releases the worker pool. The database handle is owned by the
// provider and is closed separately.
func (r *Resolver) Shutdown() {
	r.pool.Release()
}
