package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/internal/dto"
	"intellicart-assistant-be/internal/pkg/logger"
	"intellicart-assistant-be/internal/repository/contract"
	"intellicart-assistant-be/pkg/convo"
	"intellicart-assistant-be/pkg/events"
	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/rag"
	"intellicart-assistant-be/pkg/rag/intent"
	"intellicart-assistant-be/pkg/store"
)

// IAssistantService is the session-scripted shopping assistant: a login
// wizard followed by the active recommendation loop.
type IAssistantService interface {
	HandleChat(ctx context.Context, sessionID, message string, forceRag bool) *dto.ChatResponse
}

type assistantService struct {
	sessions    contract.ISessionRepository
	users       client.IUserClient
	orders      client.IOrderClient
	engine      *rag.Engine
	resolver    *intent.Resolver
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	logger      logger.ILogger

	// One mutex per session id so concurrent turns on the same session
	// serialize while different sessions proceed in parallel.
	locks sync.Map
}

func NewAssistantService(
	sessions contract.ISessionRepository,
	users client.IUserClient,
	orders client.IOrderClient,
	engine *rag.Engine,
	resolver *intent.Resolver,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		sessions:    sessions,
		users:       users,
		orders:      orders,
		engine:      engine,
		resolver:    resolver,
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      log,
	}
}

var (
	getUserRe       = regexp.MustCompile(`(?:get|show)\s+user\s+(\d+)`)
	ordersForUserRe = regexp.MustCompile(`(?:show|list|get)\s+orders\s+for\s+user\s+(\d+)`)
	userDigitsRe    = regexp.MustCompile(`user\s+(\d+)`)
	bestPrefixRe    = regexp.MustCompile(`^[-•\d.)\s]+`)
)

func (s *assistantService) HandleChat(ctx context.Context, sessionID, message string, forceRag bool) (resp *dto.ChatResponse) {
	if sessionID == "" {
		sessionID = "default"
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("assistant", "turn panicked", map[string]interface{}{
				"sessionId": sessionID,
				"panic":     fmt.Sprintf("%v", r),
			})
			resp = s.reply(sessionID, fmt.Sprintf("Something went wrong: %v", r), 0.0)
		}
	}()

	session := s.sessions.GetOrCreate(sessionID)

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return s.reply(sessionID, "Please provide a non-empty message.", 0.0)
	}

	normalized := convo.Normalize(trimmed)
	lower := strings.ToLower(normalized)

	session.AddUserTurn(trimmed)

	var out *dto.ChatResponse
	switch session.Stage {
	case store.StageAskUsername:
		out = s.handleAskUsername(ctx, session, trimmed, lower)
	case store.StageAskPassword:
		out = s.handleAskPassword(session)
	case store.StageAskPreference:
		out = s.handleAskPreference(ctx, session, trimmed)
	default:
		out = s.handleActive(ctx, session, normalized, lower, forceRag)
	}

	session.AddAssistantTurn(out.Answer)
	s.sessions.Save(session)
	return out
}

func (s *assistantService) lockFor(sessionID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// --- login wizard ---

func (s *assistantService) handleAskUsername(ctx context.Context, session *store.Session, raw, lower string) *dto.ChatResponse {
	if convo.LooksStartLike(lower) {
		return s.reply(session.ID, "Welcome! Please enter your username.", 1.0)
	}

	user, err := s.users.ResolveByName(ctx, raw)
	if err != nil {
		s.logger.Warn("assistant", "user lookup failed", map[string]interface{}{"error": err.Error()})
	}
	if user == nil {
		return s.reply(session.ID, "I couldn't find that username. Try again or type 'start' to restart.", 0.7)
	}

	session.Username = user.DisplayName()
	session.UserID = user.ID
	session.Stage = store.StageAskPassword
	return s.reply(session.ID, fmt.Sprintf("Thanks, %s. Enter your password.", session.Username), 1.0)
}

// Any non-empty input passes. Credential checks live in user-service;
// the assistant only walks the script.
func (s *assistantService) handleAskPassword(session *store.Session) *dto.ChatResponse {
	session.Stage = store.StageAskPreference
	return s.reply(session.ID, "Great. What kind of books are you in the mood for today?", 1.0)
}

// The wizard keeps the preference turn verbatim; only Active-stage
// refinements run it through phrase extraction.
func (s *assistantService) handleAskPreference(ctx context.Context, session *store.Session, raw string) *dto.ChatResponse {
	session.Preference = raw
	session.Recs = s.engine.GenerateRecommendations(ctx, session.Preference)
	session.Cart = nil
	session.Stage = store.StageActive
	return s.reply(session.ID, renderRecs(session.Recs)+footerCart(session), 1.0)
}

// --- active loop ---

func (s *assistantService) handleActive(ctx context.Context, session *store.Session, normalized, lower string, forceRag bool) *dto.ChatResponse {
	if looksUserOverview(lower) {
		return s.userOverview(ctx, session, lower)
	}

	switch lower {
	case "list all users", "show all users", "get all users":
		raw, err := s.users.ListRaw(ctx)
		if err != nil {
			return s.reply(session.ID, "I couldn't reach the user service. Try again shortly.", 0.7)
		}
		return s.reply(session.ID, "Users:\n"+client.Pretty(raw), 1.0)
	case "list all orders", "show all orders", "get all orders":
		raw, err := s.orders.ListRaw(ctx)
		if err != nil {
			return s.reply(session.ID, "I couldn't reach the order service. Try again shortly.", 0.7)
		}
		return s.reply(session.ID, "Orders:\n"+client.Pretty(raw), 1.0)
	}

	if m := ordersForUserRe.FindStringSubmatch(lower); m != nil {
		id := parseID(m[1])
		raw, err := s.orders.ListForUserRaw(ctx, id)
		if err != nil {
			return s.reply(session.ID, "I couldn't reach the order service. Try again shortly.", 0.7)
		}
		return s.reply(session.ID, fmt.Sprintf("Orders for user %d:\n%s", id, client.Pretty(raw)), 1.0)
	}
	if m := getUserRe.FindStringSubmatch(lower); m != nil {
		id := parseID(m[1])
		raw, err := s.users.GetRaw(ctx, id)
		if err != nil {
			return s.reply(session.ID, "I couldn't reach the user service. Try again shortly.", 0.7)
		}
		return s.reply(session.ID, fmt.Sprintf("User %d:\n%s", id, client.Pretty(raw)), 1.0)
	}

	if strings.Contains(lower, "start") {
		session.Reset()
		return s.reply(session.ID, "Welcome! Please enter your username.", 1.0)
	}

	resolved := s.resolver.Resolve(ctx, normalized, session)
	negative := convo.IsNegative(lower)

	if negative && (resolved.Action == intent.ActionUnknown || resolved.Action == intent.ActionReject) {
		session.Cart = nil
		return s.reply(session.ID, `No problem. I've cleared your cart. Tell me another vibe (e.g., "recommend fantasy heists") or say "start".`, 1.0)
	}

	switch resolved.Action {
	case intent.ActionNewRecs:
		session.Preference = convo.ExtractPreference(lower, session.Preference)
		session.Recs = s.engine.GenerateRecommendations(ctx, session.Preference)
		return s.reply(session.ID, renderRecs(session.Recs)+footerCart(session), 1.0)

	case intent.ActionAddToCart:
		return s.addToCart(session, resolved.Items, lower)

	case intent.ActionRemoveFromCart:
		return s.removeFromCart(session, resolved.Items, lower)

	case intent.ActionCheckout:
		return s.checkout(ctx, session)

	case intent.ActionCompare:
		return s.compare(ctx, session, normalized)

	case intent.ActionReject:
		session.Cart = nil
		return s.reply(session.ID, "Okay. Nothing added. Want me to suggest different books?", 1.0)

	case intent.ActionHelp:
		return s.reply(session.ID, `You can say things like: "which is best?", "show more sci-fi", "add 1 and 3", "remove 2", "checkout", or "no thanks".`, 1.0)
	}

	return s.handleUnknown(ctx, session, lower, forceRag)
}

// handleUnknown is the deterministic ladder behind an unclassified turn:
// comparison phrasing, a standalone genre, checkout keywords, bare
// indices, then a catalogue-flavored retry before giving up.
func (s *assistantService) handleUnknown(ctx context.Context, session *store.Session, lower string, forceRag bool) *dto.ChatResponse {
	if convo.LooksCompare(lower) {
		if len(session.Recs) == 0 {
			return s.reply(session.ID, "They're all good. Want me to pick one and add it for you?", 1.0)
		}
		best := s.pickBestRec(ctx, session.Recs, lower)
		return s.reply(session.ID, fmt.Sprintf("I'd pick **%s** — %s. Add it?", best.Title, best.Reason), 1.0)
	}

	if convo.LooksLikeStandaloneGenre(lower) {
		session.Preference = convo.CanonicalizeGenre(lower)
		session.Recs = s.engine.GenerateRecommendations(ctx, session.Preference)
		return s.reply(session.ID, renderRecs(session.Recs)+footerCart(session), 1.0)
	}

	if convo.LooksCheckout(lower) {
		return s.checkout(ctx, session)
	}

	if idx := convo.ParseIndices(lower, len(session.Recs)); len(idx) > 0 {
		for _, i := range idx {
			session.AddToCart(session.Recs[i-1])
		}
		return s.reply(session.ID, renderCart(session.Cart)+"\nType \"checkout\" to place the order, or add more numbers.", 1.0)
	}

	if forceRag || convo.LooksBooky(lower) {
		session.Preference = convo.ExtractPreference(lower, "popular sci-fi")
		session.Recs = s.engine.GenerateRecommendations(ctx, session.Preference)
		return s.reply(session.ID, renderRecs(session.Recs)+footerCart(session), 1.0)
	}

	return s.reply(session.ID, "I didn't catch that.\nTry: \"which is best?\", \"1 and 2\", \"checkout\", \"recommend fantasy heists\", \"no thanks\", or \"start\".", 0.8)
}

func (s *assistantService) addToCart(session *store.Session, items []interface{}, lower string) *dto.ChatResponse {
	picked := matchRecs(session.Recs, items)
	if len(picked) == 0 {
		for _, i := range convo.ParseIndices(lower, len(session.Recs)) {
			picked = append(picked, session.Recs[i-1])
		}
	}
	if len(picked) == 0 {
		return s.reply(session.ID, "Tell me which ones you want (e.g., \"1 and 2\", or the titles).", 1.0)
	}
	for _, r := range picked {
		session.AddToCart(r)
	}
	return s.reply(session.ID, renderCart(session.Cart)+"\nType \"checkout\" to place the order, or add more numbers.", 1.0)
}

func (s *assistantService) removeFromCart(session *store.Session, items []interface{}, lower string) *dto.ChatResponse {
	// Items are matched against what is actually in the cart when it
	// has anything; otherwise fall back to rec numbering.
	pool := session.Cart
	if len(pool) == 0 {
		pool = session.Recs
	}
	picked := matchRecs(pool, items)
	if len(picked) == 0 {
		for _, i := range convo.ParseIndices(lower, len(pool)) {
			picked = append(picked, pool[i-1])
		}
	}
	for _, r := range picked {
		session.RemoveFromCart(r)
	}
	return s.reply(session.ID, renderCart(session.Cart)+"\nAdd more or \"checkout\".", 1.0)
}

func (s *assistantService) checkout(ctx context.Context, session *store.Session) *dto.ChatResponse {
	if len(session.Cart) == 0 {
		return s.reply(session.ID, "Your cart is empty. Add items first (e.g., \"1 and 2\").", 1.0)
	}

	placed := s.orders.PlaceOrder(ctx, session.UserID, session.Cart)
	s.publishOrderPlaced(ctx, session, placed)
	session.Cart = nil

	return s.reply(session.ID, fmt.Sprintf("Order placed ✅\nOrder ID: %s\nAmount: $%.2f\nNeed anything else?", placed.ID, placed.TotalAmount), 1.0)
}

func (s *assistantService) publishOrderPlaced(ctx context.Context, session *store.Session, placed client.PlacedOrder) {
	if s.publisher == nil {
		return
	}
	items := make([]map[string]interface{}, len(session.Cart))
	for i, r := range session.Cart {
		items[i] = map[string]interface{}{
			"bookId": r.BookID,
			"title":  r.Title,
			"price":  r.Price,
		}
	}
	evt := events.NewOrderPlaced(session.ID, session.UserID, placed.ID, placed.TotalAmount, items)
	if err := s.publisher.PublishEvent(ctx, evt); err != nil {
		s.logger.Warn("assistant", "order event publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *assistantService) compare(ctx context.Context, session *store.Session, said string) *dto.ChatResponse {
	if len(session.Recs) == 0 {
		return s.reply(session.ID, "They're all strong picks. Want me to pick one and add it to your cart?", 1.0)
	}
	best := s.pickBestRec(ctx, session.Recs, said)
	return s.reply(session.ID, fmt.Sprintf("I'd go with **%s** — %s ($%.2f).\nAdd it to your cart?", best.Title, best.Reason, best.Price), 1.0)
}

// pickBestRec asks the model to name one title from the current recs,
// given how the user phrased the comparison. Any reply that doesn't
// match a known title falls back to the first rec.
func (s *assistantService) pickBestRec(ctx context.Context, recs []*store.Recommendation, said string) *store.Recommendation {
	var b strings.Builder
	b.WriteString("Choose the single best option for the user from this list. Respond with ONLY the exact title.\n")
	fmt.Fprintf(&b, "User said: %s\n", said)
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, r.Title, r.Reason)
	}

	reply, err := s.llmProvider.Generate(ctx, b.String(), llm.WithTemperature(0.0))
	if err != nil {
		return recs[0]
	}
	title := strings.ToLower(bestPrefixRe.ReplaceAllString(strings.TrimSpace(reply), ""))
	for _, r := range recs {
		if title != "" && strings.Contains(strings.ToLower(r.Title), title) {
			return r
		}
	}
	return recs[0]
}

func (s *assistantService) userOverview(ctx context.Context, session *store.Session, lower string) *dto.ChatResponse {
	var user *client.User
	var err error
	if m := userDigitsRe.FindStringSubmatch(lower); m != nil {
		user, err = s.users.Get(ctx, parseID(m[1]))
	} else if session.UserID != 0 {
		user, err = s.users.Get(ctx, session.UserID)
	}
	if err != nil {
		s.logger.Warn("assistant", "overview user lookup failed", map[string]interface{}{"error": err.Error()})
	}
	if user == nil {
		return s.reply(session.ID, "I couldn't resolve the user. Try \"summary for user 1\".", 0.7)
	}

	orders, err := s.orders.ListForUserRaw(ctx, user.ID)
	ordersText := "(unavailable)"
	if err == nil {
		ordersText = client.Pretty(orders)
	}

	pref := session.Preference
	if pref == "" {
		pref = "popular books"
	}
	recsText, err := s.llmProvider.Generate(ctx,
		fmt.Sprintf("Recommend 3 books for a reader who likes: %s. Keep it brief: title – one-line reason.", pref))
	if err != nil || strings.TrimSpace(recsText) == "" {
		recsText = "(unavailable)"
	}

	answer := fmt.Sprintf("User: %s (id=%d)\n\nOrders:\n%s\n\nRecommendations:\n%s",
		user.DisplayName(), user.ID, ordersText, strings.TrimSpace(recsText))
	return s.reply(session.ID, answer, 1.0)
}

func looksUserOverview(lower string) bool {
	if !strings.Contains(lower, "user") {
		return false
	}
	if strings.Contains(lower, "overview") || strings.Contains(lower, "summary") {
		return true
	}
	return strings.Contains(lower, "order") &&
		(strings.Contains(lower, "book") || strings.Contains(lower, "recommend"))
}

// matchRecs resolves intent items against a pool: whole numbers are
// 1-based positions, strings match by title substring.
func matchRecs(pool []*store.Recommendation, items []interface{}) []*store.Recommendation {
	var out []*store.Recommendation
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			i := int(v)
			if i >= 1 && i <= len(pool) {
				out = append(out, pool[i-1])
			}
		case int:
			if v >= 1 && v <= len(pool) {
				out = append(out, pool[v-1])
			}
		case string:
			needle := strings.ToLower(strings.TrimSpace(v))
			if needle == "" {
				continue
			}
			if n, ok := asWholeNumber(needle); ok {
				if n >= 1 && n <= len(pool) {
					out = append(out, pool[n-1])
				}
				continue
			}
			for _, r := range pool {
				if strings.Contains(strings.ToLower(r.Title), needle) {
					out = append(out, r)
					break
				}
			}
		}
	}
	return out
}

func asWholeNumber(s string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, false
	}
	return n, fmt.Sprintf("%d", n) == s
}

func parseID(s string) int64 {
	var id int64
	fmt.Sscanf(s, "%d", &id)
	return id
}

// --- rendering ---

func renderRecs(recs []*store.Recommendation) string {
	var b strings.Builder
	b.WriteString("Here are some picks:\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s — %s ($%.2f)\n", i+1, r.Title, r.Reason, r.Price)
	}
	b.WriteString("\nAdd to cart by saying numbers (e.g., \"1 and 2\" or titles), or say \"checkout\".")
	return b.String()
}

func renderCart(cart []*store.Recommendation) string {
	if len(cart) == 0 {
		return "Cart is empty."
	}
	var b strings.Builder
	b.WriteString("In your cart:\n")
	total := 0.0
	for _, r := range cart {
		fmt.Fprintf(&b, "- %s ($%.2f)\n", r.Title, r.Price)
		total += r.Price
	}
	fmt.Fprintf(&b, "Total: $%.2f", total)
	return b.String()
}

func footerCart(session *store.Session) string {
	if len(session.Cart) == 0 {
		return ""
	}
	return "\n\n" + renderCart(session.Cart) + "\nAdd items by number or title, or type \"checkout\"."
}

func (s *assistantService) reply(sessionID, answer string, confidence float64) *dto.ChatResponse {
	return &dto.ChatResponse{Answer: answer, Confidence: confidence, SessionID: sessionID}
}
