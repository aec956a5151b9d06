package store

import "github.com/google/uuid"

// Recommendation is a single suggested book as shown to the user.
// Parsed recommendations that did not come from the catalogue get
// synthetic ids in the 7000 range; ids restart per shelf, so Ref is
// the real identity of a pick and survives serialized session stores.
type Recommendation struct {
	Ref    string  `json:"ref"`
	BookID int64   `json:"book_id"`
	Title  string  `json:"title"`
	Reason string  `json:"reason"`
	Price  float64 `json:"price"`
}

// NewRecommendation stamps a fresh instance ref, so the same synthetic
// book id on two different shelves still counts as two distinct picks.
func NewRecommendation(bookID int64, title, reason string, price float64) *Recommendation {
	return &Recommendation{
		Ref:    uuid.NewString(),
		BookID: bookID,
		Title:  title,
		Reason: reason,
		Price:  price,
	}
}

// sameRec is cart identity: the same instance, or the same ref after a
// round-trip through a serialized session store. Book ids don't count;
// they collide across regenerated shelves.
func sameRec(a, b *Recommendation) bool {
	if a == b {
		return true
	}
	return a.Ref != "" && a.Ref == b.Ref
}

// Turn is one entry of the agent conversation transcript.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session represents the active shopping session state in memory
type Session struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`

	// Login wizard results
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`

	// Last stated book preference (verbatim or extracted)
	Preference string `json:"preference"`

	// THE SHELF (last recommendations shown, 1-indexed for the user)
	Recs []*Recommendation `json:"recs"`

	// THE CART (subset of recommendations the user picked)
	Cart []*Recommendation `json:"cart"`

	// Agent transcript for the tool-calling endpoint
	History []Turn `json:"history"`
}

const (
	StageAskUsername   = "ASK_USERNAME"
	StageAskPassword   = "ASK_PASSWORD"
	StageAskPreference = "ASK_BOOK_PREF"
	StageActive        = "SHOW_RECS"
)

// NewSession returns a fresh session at the start of the login wizard.
func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		Stage: StageAskUsername,
		Recs:  []*Recommendation{},
		Cart:  []*Recommendation{},
	}
}

// Reset puts the session back at the start of the wizard and empties
// the shelf and the cart.
func (s *Session) Reset() {
	s.Stage = StageAskUsername
	s.Recs = s.Recs[:0]
	s.Cart = s.Cart[:0]
}

// InCart reports whether this exact recommendation instance is already
// in the cart.
func (s *Session) InCart(r *Recommendation) bool {
	for _, c := range s.Cart {
		if sameRec(c, r) {
			return true
		}
	}
	return false
}

// AddToCart appends r unless the same instance is already present.
func (s *Session) AddToCart(r *Recommendation) bool {
	if r == nil || s.InCart(r) {
		return false
	}
	s.Cart = append(s.Cart, r)
	return true
}

// RemoveFromCart drops the given recommendation instance, if present.
func (s *Session) RemoveFromCart(r *Recommendation) {
	if r == nil {
		return
	}
	for i, c := range s.Cart {
		if sameRec(c, r) {
			s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
			return
		}
	}
}

// CartTotal sums the cart item prices.
func (s *Session) CartTotal() float64 {
	total := 0.0
	for _, c := range s.Cart {
		total += c.Price
	}
	return total
}

func (s *Session) AddUserTurn(m string) {
	s.History = append(s.History, Turn{Role: "user", Content: m})
}

func (s *Session) AddAssistantTurn(m string) {
	if m == "" {
		return
	}
	s.History = append(s.History, Turn{Role: "assistant", Content: m})
}
