package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
	"golang.org/x/sync/singleflight"
)

const listKey = "\x00list"

// Catalogue caches verbs with TTL to avoid repeated loader hits.
type Catalogue struct {
	loader app.VerbLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedVerb
	list  cachedList
}

type cachedVerb struct {
	verb      domain.Verb
	expiresAt time.Time
}

type cachedList struct {
	infinitives []string
	expiresAt   time.Time
}

func NewCatalogue(loader app.VerbLoader, ttl time.Duration) *Catalogue {
	return &Catalogue{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedVerb),
	}
}

func (c *Catalogue) GetVerb(ctx context.Context, infinitive string) (domain.Verb, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[infinitive]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.verb, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(infinitive, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[infinitive]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.verb, nil
		}
		c.mu.RUnlock()

		verb, err := c.loader.LoadVerb(ctx, infinitive)
		if err != nil {
			return domain.Verb{}, err
		}

		expiresAt := now.Add(c.ttlWithJitter())
		c.mu.Lock()
		c.cache[infinitive] = cachedVerb{
			verb:      verb,
			expiresAt: expiresAt,
		}
		c.mu.Unlock()
		return verb, nil
	})
	if err != nil {
		return domain.Verb{}, err
	}
	return result.(domain.Verb), nil
}

func (c *Catalogue) Infinitives(ctx context.Context) ([]string, error) {
	now := c.clock()

	c.mu.RLock()
	if c.list.infinitives != nil && c.list.expiresAt.After(now) {
		out := append([]string(nil), c.list.infinitives...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(listKey, func() (interface{}, error) {
		infinitives, err := c.loader.ListInfinitives(ctx)
		if err != nil {
			return nil, err
		}
		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		c.list = cachedList{
			infinitives: append([]string{}, infinitives...),
			expiresAt:   expiresAt,
		}
		c.mu.Unlock()
		return infinitives, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result.([]string)...), nil
}

// StaticVerbLoader is a loader backed by an in-memory map (built-in catalogue, tests).
type StaticVerbLoader struct {
	verbs map[string]domain.Verb
}

func NewStaticVerbLoader(verbs map[string]domain.Verb) *StaticVerbLoader {
	return &StaticVerbLoader{verbs: verbs}
}

func (l *StaticVerbLoader) LoadVerb(_ context.Context, infinitive string) (domain.Verb, error) {
	if verb, ok := l.verbs[infinitive]; ok {
		return verb, nil
	}
	return domain.Verb{}, domain.ErrVerbNotFound
}

// ListInfinitives returns the infinitives in sorted order.
func (l *StaticVerbLoader) ListInfinitives(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(l.verbs))
	for inf := range l.verbs {
		out = append(out, inf)
	}
	sort.Strings(out)
	return out, nil
}

func (c *Catalogue) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
