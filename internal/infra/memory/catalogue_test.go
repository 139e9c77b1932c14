package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dutch-verb-trainer/internal/domain"
)

func TestCatalogueCachesVerbs(t *testing.T) {
	loader := &countingLoader{
		StaticVerbLoader: NewStaticVerbLoader(sampleVerbs()),
	}
	catalogue := NewCatalogue(loader, time.Minute)

	verb, err := catalogue.GetVerb(context.Background(), "lopen")
	if err != nil {
		t.Fatalf("get verb: %v", err)
	}
	if verb.Forms.Cell(domain.Past, domain.Ik) != "liep" {
		t.Fatalf("unexpected forms %+v", verb.Forms)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := catalogue.GetVerb(context.Background(), "lopen"); err != nil {
		t.Fatalf("get verb 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogueReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{
		StaticVerbLoader: NewStaticVerbLoader(sampleVerbs()),
	}
	catalogue := NewCatalogue(loader, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	catalogue.clock = func() time.Time { return now }

	_, _ = catalogue.GetVerb(context.Background(), "lopen")
	now = now.Add(2 * time.Minute)
	_, _ = catalogue.GetVerb(context.Background(), "lopen")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogueUnknownVerb(t *testing.T) {
	catalogue := NewCatalogue(NewStaticVerbLoader(sampleVerbs()), time.Minute)
	if _, err := catalogue.GetVerb(context.Background(), "vliegen"); !errors.Is(err, domain.ErrVerbNotFound) {
		t.Fatalf("expected verb not found, got %v", err)
	}
}

func TestCatalogueInfinitivesSorted(t *testing.T) {
	catalogue := NewCatalogue(NewStaticVerbLoader(sampleVerbs()), time.Minute)
	list, err := catalogue.Infinitives(context.Background())
	if err != nil {
		t.Fatalf("infinitives: %v", err)
	}
	if len(list) != 2 || list[0] != "lopen" || list[1] != "zijn" {
		t.Fatalf("unexpected infinitives %v", list)
	}

	list[0] = "mutated"
	again, _ := catalogue.Infinitives(context.Background())
	if again[0] != "lopen" {
		t.Fatalf("cached list leaked to caller: %v", again)
	}
}

type countingLoader struct {
	*StaticVerbLoader
	calls int
}

func (l *countingLoader) LoadVerb(ctx context.Context, infinitive string) (domain.Verb, error) {
	l.calls++
	return l.StaticVerbLoader.LoadVerb(ctx, infinitive)
}

func sampleVerbs() map[string]domain.Verb {
	return map[string]domain.Verb{
		"lopen": {
			Infinitive: "lopen",
			Forms: domain.TenseForms{
				Present: domain.VerbForms{Ik: "loop", Jij: "loopt", HijZij: "loopt", Wij: "lopen"},
				Past:    domain.VerbForms{Ik: "liep", Jij: "liep", HijZij: "liep", Wij: "liepen"},
				Perfect: domain.VerbForms{Ik: "heb gelopen|ben gelopen", Jij: "hebt gelopen", HijZij: "heeft gelopen", Wij: "hebben gelopen"},
			},
		},
		"zijn": {
			Infinitive: "zijn",
			Forms: domain.TenseForms{
				Present: domain.VerbForms{Ik: "ben", Jij: "bent", HijZij: "is", Wij: "zijn"},
			},
		},
	}
}
