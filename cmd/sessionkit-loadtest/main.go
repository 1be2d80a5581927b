package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edusdk/sessionkit"
	"github.com/edusdk/sessionkit/metrics/export/internaldefs"
	"github.com/edusdk/sessionkit/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		devices     = flag.Int("devices", 5000, "number of device sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (hydrate + refresh); sign-out runs devices ops")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "sk", "per-device session key prefix")
	)
	flag.Parse()

	if *devices <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "devices, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	// A .env file can supply REDIS_ADDR for runs against a real server.
	_ = godotenv.Load()

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	backend := newLoadBackend()

	// Every seeded device gets its own key prefix and its own engine over
	// the shared client, the same shape a fleet of real devices produces.
	engines := make([]*sessionkit.Engine, *devices)
	fmt.Printf("seeding %d device sessions...\n", *devices)
	startSeed := time.Now()
	seed := new(errgroup.Group)
	seed.SetLimit(*concurrency)
	for i := range engines {
		i := i
		seed.Go(func() error {
			rs := store.NewRedis(client, fmt.Sprintf("%s-%d", *prefix, i))
			user := sessionkit.User{
				ID:       fmt.Sprintf("u-%d", i),
				Email:    fmt.Sprintf("device-%d@school.example", i),
				FullName: "Load Device",
				Role:     sessionkit.RoleStudent,
				SchoolID: "sch-load",
			}
			if err := rs.SetSession(ctx, backend.mintPair(), &user); err != nil {
				return err
			}
			eng, err := sessionkit.New().
				WithConfig(sessionkit.DefaultConfig()).
				WithTokenStore(rs).
				WithScratchStore(rs).
				WithAuthAPI(backend).
				WithMetricsEnabled(true).
				Build()
			if err != nil {
				return err
			}
			engines[i] = eng
			return nil
		})
	}
	if err := seed.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	hydrateStats := runPhase(ctx, engines, *ops, *concurrency, 7919, func(ctx context.Context, eng *sessionkit.Engine) bool {
		eng.Hydrate(ctx)
		return eng.State().Status == sessionkit.StatusAuthenticated
	})
	refreshStats := runPhase(ctx, engines, *ops, *concurrency, 6151, func(ctx context.Context, eng *sessionkit.Engine) bool {
		return eng.EnsureFresh(ctx) != ""
	})
	signOutStats := runPhase(ctx, engines, *devices, *concurrency, 4409, func(ctx context.Context, eng *sessionkit.Engine) bool {
		eng.SignOut(ctx)
		return eng.State().Status == sessionkit.StatusUnauthenticated
	})

	fmt.Println("---- results ----")
	printStats("hydrate", hydrateStats)
	printStats("refresh", refreshStats)
	printStats("signout", signOutStats)
	printCounterTotals(engines)

	for _, eng := range engines {
		eng.Close()
	}
}

func runPhase(ctx context.Context, engines []*sessionkit.Engine, ops, concurrency int, seedPrime int64, op func(context.Context, *sessionkit.Engine) bool) phaseStats {
	var (
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	g := new(errgroup.Group)
	for w := 0; w < concurrency; w++ {
		w := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)*seedPrime))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return nil
				}
				eng := engines[r.Intn(len(engines))]
				t0 := time.Now()
				ok := op(ctx, eng)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		})
	}
	_ = g.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func printCounterTotals(engines []*sessionkit.Engine) {
	totals := make(map[sessionkit.MetricID]uint64)
	for _, eng := range engines {
		snap := eng.MetricsSnapshot()
		for id, v := range snap.Counters {
			totals[id] += v
		}
	}
	fmt.Println("---- engine counters ----")
	for _, def := range internaldefs.CounterDefs {
		if v := totals[def.ID]; v > 0 {
			fmt.Printf("%s=%d\n", def.Name, v)
		}
	}
}

type loadBackend struct {
	secret []byte
	seq    uint64
}

func newLoadBackend() *loadBackend {
	return &loadBackend{secret: []byte("loadtest-signing-secret")}
}

// mintPair signs tokens just under the freshness threshold so every
// EnsureFresh call exercises the full renewal path.
func (b *loadBackend) mintPair() sessionkit.TokenPair {
	n := atomic.AddUint64(&b.seq, 1)
	claims := jwt.MapClaims{
		"uid": "load",
		"exp": time.Now().Add(30 * time.Second).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint failed: %v\n", err)
		os.Exit(1)
	}
	return sessionkit.TokenPair{Access: access, Refresh: fmt.Sprintf("r-%d", n)}
}

func (b *loadBackend) Login(context.Context, string, string) (*sessionkit.LoginResponse, error) {
	return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 501, "login not exercised by the load test", nil)
}

func (b *loadBackend) Signup(context.Context, sessionkit.SignupRequest) (*sessionkit.LoginResponse, error) {
	return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 501, "signup not exercised by the load test", nil)
}

func (b *loadBackend) LoginWithGoogle(context.Context, string) (*sessionkit.LoginResponse, error) {
	return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 501, "google sign-in not exercised by the load test", nil)
}

func (b *loadBackend) Refresh(context.Context, string) (*sessionkit.TokenPair, error) {
	pair := b.mintPair()
	return &pair, nil
}

func (b *loadBackend) ValidateToken(context.Context, string) (*sessionkit.User, error) {
	return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 501, "validate not exercised by the load test", nil)
}

func (b *loadBackend) CreateProfile(context.Context, string, sessionkit.ProfileRequest) (*sessionkit.User, error) {
	return nil, sessionkit.NewAPIError(sessionkit.ErrorKindServer, 501, "profile creation not exercised by the load test", nil)
}
