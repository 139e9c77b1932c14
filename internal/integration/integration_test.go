package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
	pgloader "dutch-verb-trainer/internal/infra/postgres"
	pgmigrations "dutch-verb-trainer/internal/infra/postgres/migrations"
	infraredis "dutch-verb-trainer/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestDrillEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedVerbs(t, ctx, pgURL, sampleVerbs())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewVerbLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalogue := infraredis.NewCatalogue(redisClient, loader, 5*time.Minute)
	store := app.NewSessionStore(infraredis.NewKVStore(redisClient, time.Hour), "it_session")
	service := app.NewQuizService(store, catalogue, app.NewRandomPickerWithSeed(7))

	sel, _ := domain.NewSelection([]domain.Tense{domain.Present}, []domain.Person{domain.Ik, domain.Wij})
	drill, err := service.Start(ctx, 5, sel)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if drill.Session().TotalQuestions != 2 {
		t.Fatalf("expected count clamped to pool size, got %d", drill.Session().TotalQuestions)
	}

	// First verb answered correctly, second left blank.
	first, err := drill.CurrentVerb(ctx)
	if err != nil {
		t.Fatalf("current verb: %v", err)
	}
	for _, p := range sel.Persons {
		answer := domain.FirstAlternative(first.Forms.Cell(domain.Present, p))
		if err := drill.SetAnswer(ctx, domain.Present, p, answer); err != nil {
			t.Fatalf("set answer: %v", err)
		}
	}
	if res, err := drill.Check(ctx); err != nil || res.Mistakes != 0 {
		t.Fatalf("check first verb: mistakes=%d err=%v", res.Mistakes, err)
	}
	if _, err := drill.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// A fresh service over the same Redis sees the stored progress.
	resumed, err := app.NewQuizService(store, catalogue, app.NewRandomPicker()).Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Session().CurrentIndex != 1 {
		t.Fatalf("expected resumed pointer at 1, got %d", resumed.Session().CurrentIndex)
	}

	if res, err := resumed.Check(ctx); err != nil || res.Mistakes != 2 {
		t.Fatalf("check second verb: mistakes=%d err=%v", res.Mistakes, err)
	}
	state, err := resumed.Advance(ctx)
	if err != nil || state != app.Finished {
		t.Fatalf("expected finished, got %v err=%v", state, err)
	}
	result, err := resumed.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.TotalFields != 4 || result.Mistakes != 2 || result.Accuracy != 50 {
		t.Fatalf("unexpected result %+v", result)
	}

	exists, err := redisClient.Exists(ctx, "verb:"+first.Infinitive+":forms").Result()
	if err != nil || exists != 1 {
		t.Fatalf("expected verb cached in redis, exists=%d err=%v", exists, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "drill", "POSTGRES_PASSWORD": "drillpass", "POSTGRES_DB": "verbs"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://drill:drillpass@%s:%s/verbs?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedVerbs(t *testing.T, ctx context.Context, dsn string, verbs []domain.Verb) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgloader.SeedVerbs(ctx, db, verbs); err != nil {
		t.Fatalf("seed verbs: %v", err)
	}
}

func sampleVerbs() []domain.Verb {
	return []domain.Verb{
		{
			Infinitive: "lopen",
			Forms: domain.TenseForms{
				Present: domain.VerbForms{Ik: "loop", Jij: "loopt", HijZij: "loopt", Wij: "lopen"},
				Past:    domain.VerbForms{Ik: "liep", Jij: "liep", HijZij: "liep", Wij: "liepen"},
				Perfect: domain.VerbForms{Ik: "heb gelopen|ben gelopen", Jij: "hebt gelopen|bent gelopen", HijZij: "heeft gelopen|is gelopen", Wij: "hebben gelopen|zijn gelopen"},
			},
		},
		{
			Infinitive: "werken",
			Forms: domain.TenseForms{
				Present: domain.VerbForms{Ik: "werk", Jij: "werkt", HijZij: "werkt", Wij: "werken"},
				Past:    domain.VerbForms{Ik: "werkte", Jij: "werkte", HijZij: "werkte", Wij: "werkten"},
				Perfect: domain.VerbForms{Ik: "heb gewerkt", Jij: "hebt gewerkt", HijZij: "heeft gewerkt", Wij: "hebben gewerkt"},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
