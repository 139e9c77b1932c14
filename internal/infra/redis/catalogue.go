package redis

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const infinitivesKey = "verbs:infinitives"

// Catalogue caches accepted forms in Redis (hash per verb) and falls back to a loader on cache miss.
// Forms are stored as:      HSET verb:{infinitive}:forms {tense}.{person} {accepted forms}
// Infinitives are stored as: RPUSH verbs:infinitives {infinitive...}
type Catalogue struct {
	client *redis.Client
	loader app.VerbLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogue(client *redis.Client, loader app.VerbLoader, ttl time.Duration) *Catalogue {
	return &Catalogue{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Catalogue) GetVerb(ctx context.Context, infinitive string) (domain.Verb, error) {
	key := c.formsKey(infinitive)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return buildVerbFromCache(infinitive, fields), nil
	}

	result, err, _ := c.sf.Do(infinitive, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return buildVerbFromCache(infinitive, fields), nil
		}

		verb, err := c.loader.LoadVerb(ctx, infinitive)
		if err != nil {
			return domain.Verb{}, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for _, t := range domain.Tenses {
			for _, p := range domain.Persons {
				pipe.HSet(ctx, key, fieldName(t, p), verb.Forms.Cell(t, p))
			}
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return verb, nil
	})
	if err != nil {
		return domain.Verb{}, err
	}
	return result.(domain.Verb), nil
}

func (c *Catalogue) Infinitives(ctx context.Context) ([]string, error) {
	cached, err := c.client.LRange(ctx, infinitivesKey, 0, -1).Result()
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	result, err, _ := c.sf.Do(infinitivesKey, func() (interface{}, error) {
		infinitives, err := c.loader.ListInfinitives(ctx)
		if err != nil {
			return nil, err
		}
		if len(infinitives) == 0 {
			return infinitives, nil
		}

		values := make([]interface{}, len(infinitives))
		for i, inf := range infinitives {
			values[i] = inf
		}
		ttl := c.ttlWithJitter()
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, infinitivesKey)
		pipe.RPush(ctx, infinitivesKey, values...)
		if ttl > 0 {
			pipe.Expire(ctx, infinitivesKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return infinitives, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result.([]string)...), nil
}

func (c *Catalogue) formsKey(infinitive string) string {
	return "verb:" + infinitive + ":forms"
}

func fieldName(t domain.Tense, p domain.Person) string {
	return string(t) + "." + string(p)
}

func buildVerbFromCache(infinitive string, fields map[string]string) domain.Verb {
	verb := domain.Verb{Infinitive: infinitive}
	for field, forms := range fields {
		rawTense, rawPerson, ok := strings.Cut(field, ".")
		if !ok {
			continue
		}
		verb.Forms.SetCell(domain.Tense(rawTense), domain.Person(rawPerson), forms)
	}
	return verb
}

func (c *Catalogue) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
