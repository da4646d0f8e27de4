package catalog_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	model "github.com/ashleyhq/chat-backend/internal/model/catalog"
	"github.com/ashleyhq/chat-backend/internal/service/catalog"
)

type flakyProvider struct {
	snapshot model.Catalog
	fail     bool
}

func (p *flakyProvider) Fetch(_ context.Context) (model.Catalog, error) {
	if p.fail {
		return model.Catalog{}, errors.New("provider unreachable")
	}
	return p.snapshot, nil
}

func TestLoadIsIdempotent(t *testing.T) {
	provider := &flakyProvider{snapshot: model.Seed()}
	svc := catalog.NewService(provider)
	ctx := context.Background()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("first load: %v", err)
	}
	first, ready := svc.Snapshot()
	if !ready {
		t.Fatal("expected catalog to be ready")
	}

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	second, _ := svc.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Fatal("two loads of unchanged data must be structurally equal")
	}
}

func TestLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	provider := &flakyProvider{snapshot: model.Seed()}
	svc := catalog.NewService(provider)
	ctx := context.Background()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	provider.fail = true
	if err := svc.Load(ctx); err == nil {
		t.Fatal("expected load error")
	}

	snapshot, ready := svc.Snapshot()
	if ready {
		t.Fatal("catalog must be marked not-ready after a failed load")
	}
	if len(snapshot.Personas) == 0 {
		t.Fatal("previous snapshot must be retained after a failed load")
	}
}

func TestLoadNormalizesAllowedModelIDs(t *testing.T) {
	svc := catalog.NewService(catalog.StaticProvider{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	scientist, ok := svc.Persona("ashley-data-scientist")
	if !ok {
		t.Fatal("seed persona missing")
	}
	if len(scientist.AllowedModelIDs) == 0 {
		t.Fatal("category-constrained persona must get resolved model ids")
	}
	if scientist.AllowedModelIDs[0] != model.AutoModelID {
		t.Fatalf("auto must lead the allowed list, got %v", scientist.AllowedModelIDs)
	}
	for _, id := range scientist.AllowedModelIDs {
		if _, ok := svc.Model(id); !ok {
			t.Fatalf("allowed id %s does not exist in the catalog", id)
		}
	}

	girlfriend, _ := svc.Persona("ashley-girlfriend")
	want := []string{model.AutoModelID, "nous-hermes-2-mistral-7b-gptq"}
	if !reflect.DeepEqual(girlfriend.AllowedModelIDs, want) {
		t.Fatalf("explicit allowed ids must survive normalization, got %v", girlfriend.AllowedModelIDs)
	}
}

func TestSnapshotStartsNotReady(t *testing.T) {
	svc := catalog.NewService(catalog.StaticProvider{})
	if _, ready := svc.Snapshot(); ready {
		t.Fatal("catalog must start not-ready")
	}
}
