package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/store"
)

type fakeProvider struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func sessionWithRecs() *store.Session {
	s := store.NewSession("t")
	s.Recs = []*store.Recommendation{
		{BookID: 7101, Title: "Dune", Price: 19.99},
		{BookID: 7102, Title: "Foundation", Price: 17.49},
	}
	return s
}

func TestResolveParsesCleanJSON(t *testing.T) {
	r := NewResolver(&fakeProvider{reply: `{"action":"add_to_cart","items":[1,2]}`}, nil)
	got := r.Resolve(context.Background(), "add 1 and 2", sessionWithRecs())
	if got.Action != ActionAddToCart {
		t.Errorf("action = %q", got.Action)
	}
	if len(got.Items) != 2 {
		t.Errorf("items = %v", got.Items)
	}
}

func TestResolveStripsCodeFences(t *testing.T) {
	reply := "```json\n{\"action\":\"checkout\",\"items\":[]}\n```"
	r := NewResolver(&fakeProvider{reply: reply}, nil)
	got := r.Resolve(context.Background(), "checkout", sessionWithRecs())
	if got.Action != ActionCheckout {
		t.Errorf("action = %q", got.Action)
	}
}

func TestResolveExtractsEmbeddedJSON(t *testing.T) {
	reply := `Sure! Here is the parse: {"action":"compare","items":[]} hope that helps`
	r := NewResolver(&fakeProvider{reply: reply}, nil)
	got := r.Resolve(context.Background(), "which is best?", sessionWithRecs())
	if got.Action != ActionCompare {
		t.Errorf("action = %q", got.Action)
	}
}

func TestResolveUnknownOnProviderError(t *testing.T) {
	r := NewResolver(&fakeProvider{err: errors.New("down")}, nil)
	got := r.Resolve(context.Background(), "add 1", sessionWithRecs())
	if got.Action != ActionUnknown {
		t.Errorf("action = %q", got.Action)
	}
}

func TestResolveUnknownOnGarbage(t *testing.T) {
	r := NewResolver(&fakeProvider{reply: "I can't help with that."}, nil)
	got := r.Resolve(context.Background(), "add 1", sessionWithRecs())
	if got.Action != ActionUnknown {
		t.Errorf("action = %q", got.Action)
	}
}

func TestResolveNormalizesUnlistedActions(t *testing.T) {
	r := NewResolver(&fakeProvider{reply: `{"action":"BUY_EVERYTHING","items":[]}`}, nil)
	got := r.Resolve(context.Background(), "buy it all", sessionWithRecs())
	if got.Action != ActionUnknown {
		t.Errorf("action = %q", got.Action)
	}
}

func TestPromptCarriesShelfAndCart(t *testing.T) {
	provider := &fakeProvider{reply: `{"action":"unknown","items":[]}`}
	r := NewResolver(provider, nil)

	session := sessionWithRecs()
	session.Cart = []*store.Recommendation{{BookID: 7101, Title: "Dune", Price: 19.99}}
	r.Resolve(context.Background(), "hmm", session)

	if !strings.Contains(provider.lastPrompt, "1) Dune; 2) Foundation") {
		t.Errorf("prompt missing shelf: %q", provider.lastPrompt)
	}
	if !strings.Contains(provider.lastPrompt, "Cart: Dune") {
		t.Errorf("prompt missing cart: %q", provider.lastPrompt)
	}
}

func TestPromptShowsEmptyCart(t *testing.T) {
	provider := &fakeProvider{reply: `{"action":"unknown","items":[]}`}
	r := NewResolver(provider, nil)
	r.Resolve(context.Background(), "hmm", sessionWithRecs())
	if !strings.Contains(provider.lastPrompt, "Cart: (empty)") {
		t.Errorf("prompt missing empty cart marker: %q", provider.lastPrompt)
	}
}
