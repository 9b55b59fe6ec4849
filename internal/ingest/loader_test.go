package ingest

import (
	"context"
	"errors"
	"testing"
)

type fakeRetriever struct {
	responses map[string][]byte
	errs      map[string]error
	calls     []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, location string) ([]byte, error) {
	f.calls = append(f.calls, location)
	if err, ok := f.errs[location]; ok {
		return nil, err
	}
	if body, ok := f.responses[location]; ok {
		return body, nil
	}
	return nil, errors.New("not found")
}

func TestLoader_BareArrayShape(t *testing.T) {
	r := &fakeRetriever{responses: map[string][]byte{
		"a.json": []byte(`[{"title":"Premier"},{"title":"Second"}]`),
	}}
	loader := NewLoader([]string{"a.json"}, r)

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Opportunities) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(ds.Opportunities))
	}
	if ds.Meta.GeneratedAt != "" {
		t.Error("bare array carries no meta")
	}
}

func TestLoader_WrappedShape(t *testing.T) {
	payload := `{"_meta":{"generated_at":"2026-08-01T00:00:00Z","sources":[{"name":"Aides-territoires API"}]},"opportunities":[{"title":"Premier"}]}`
	r := &fakeRetriever{responses: map[string][]byte{"a.json": []byte(payload)}}

	ds, err := NewLoader([]string{"a.json"}, r).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(ds.Opportunities))
	}
	if ds.Meta.GeneratedAt != "2026-08-01T00:00:00Z" {
		t.Errorf("meta not carried through: %+v", ds.Meta)
	}
	if len(ds.Meta.Sources) != 1 || ds.Meta.Sources[0].Name != "Aides-territoires API" {
		t.Errorf("sources not carried through: %+v", ds.Meta.Sources)
	}
}

func TestLoader_ItemsListAccepted(t *testing.T) {
	r := &fakeRetriever{responses: map[string][]byte{
		"a.json": []byte(`{"_meta":{},"items":[{"title":"Premier"}]}`),
	}}
	ds, err := NewLoader([]string{"a.json"}, r).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(ds.Opportunities))
	}
}

// Malformed-but-parseable payloads and genuinely absent data are treated
// identically: zero opportunities, no error. This pins the documented
// simplification rather than "fixing" it.
func TestLoader_UnexpectedShapeYieldsZeroOpportunities(t *testing.T) {
	for _, payload := range []string{`"hello"`, `42`, `{}`, `{"foo":"bar"}`} {
		r := &fakeRetriever{responses: map[string][]byte{"a.json": []byte(payload)}}
		ds, err := NewLoader([]string{"a.json"}, r).Load(context.Background())
		if err != nil {
			t.Fatalf("payload %s: unexpected error: %v", payload, err)
		}
		if len(ds.Opportunities) != 0 {
			t.Errorf("payload %s: expected zero opportunities", payload)
		}
	}
}

func TestLoader_FallsThroughToNextCandidate(t *testing.T) {
	r := &fakeRetriever{
		errs:      map[string]error{"a.json": errors.New("unreachable")},
		responses: map[string][]byte{"b.json": []byte(`[{"title":"Premier"}]`), "c.json": []byte(`[]`)},
	}
	loader := NewLoader([]string{"a.json", "b.json", "c.json"}, r)

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity from b.json, got %d", len(ds.Opportunities))
	}
	// Exactly one source is consumed: c.json must never be touched.
	for _, call := range r.calls {
		if call == "c.json" {
			t.Fatal("loader must stop after the first success")
		}
	}
}

func TestLoader_UnparseableBodySkipsCandidate(t *testing.T) {
	r := &fakeRetriever{responses: map[string][]byte{
		"a.json": []byte(`{not json`),
		"b.json": []byte(`[{"title":"Premier"}]`),
	}}
	ds, err := NewLoader([]string{"a.json", "b.json"}, r).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Opportunities) != 1 {
		t.Fatalf("expected fallback to b.json, got %d opportunities", len(ds.Opportunities))
	}
}

func TestLoader_AllCandidatesFailing(t *testing.T) {
	r := &fakeRetriever{errs: map[string]error{
		"a.json": errors.New("timeout"),
		"b.json": errors.New("500"),
	}}
	_, err := NewLoader([]string{"a.json", "b.json"}, r).Load(context.Background())
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
	}
}
