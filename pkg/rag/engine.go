// Package rag implements the retrieval-augmented answer and
// recommendation engine over the embedded book catalogue.
package rag

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"intellicart-assistant-be/pkg/embedding"
	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/rag/index"
)

const (
	topK                 = 12
	minScore             = 0.22
	maxSnippetsPerSource = 3
	maxSourcesInPrompt   = 10
	maxSnippetLen        = 900
	maxSourcesInFooter   = 8

	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// NoMatchSentinel is both the instruction given to the model and the
// verbatim reply when retrieval finds nothing usable. Callers compare
// against it, so it is part of the engine's contract.
const NoMatchSentinel = "No strong matches in the catalogue index. Try a broader or different vibe."

const notFoundAnswer = "I couldn't find support for that in the catalogue index. Try rephrasing or broadening the topic."

// Engine answers questions and recommends books strictly from the
// indexed catalogue. Every failure degrades to a user-facing string;
// the engine never surfaces an error to the dialogue layer.
type Engine struct {
	embedder embedding.EmbeddingProvider
	idx      index.Index
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewEngine(embedder embedding.EmbeddingProvider, idx index.Index, provider llm.LLMProvider, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		embedder: embedder,
		idx:      idx,
		provider: provider,
		logger:   logger,
	}
}

// Answer replies to a free-form question using only indexed snippets.
func (e *Engine) Answer(ctx context.Context, question string) string {
	if strings.TrimSpace(question) == "" {
		return "Please ask a non-empty question."
	}

	matches, err := e.search(ctx, question, topK, minScore)
	if err != nil {
		e.logger.Printf("[ERROR] RAG search failed: %v", err)
		return "Search isn't available right now. Try again shortly."
	}

	groups := groupBySource(matches)
	if len(groups) == 0 {
		return notFoundAnswer
	}

	sourceIDs := make([]string, 0, maxSourcesInFooter)
	for _, g := range groups {
		if len(sourceIDs) == maxSourcesInFooter {
			break
		}
		sourceIDs = append(sourceIDs, g.source)
	}

	prompt := fmt.Sprintf(`You are answering a user using ONLY the CONTEXT below (snippets from indexed books).
If the answer is not supported by the CONTEXT, say you can't find it in the index and suggest a short alternative query.

- Be concise and conversational (3-6 sentences).
- If numbers or titles appear, be precise.
- Do not fabricate details outside the CONTEXT.

USER QUESTION:
%s

CONTEXT:
%s

Write a short helpful answer based strictly on the CONTEXT.`,
		strings.TrimSpace(question),
		buildContextBlock(groups, maxSourcesInPrompt, maxSnippetsPerSource))

	reply, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		e.logger.Printf("[WARN] answer completion failed: %v", err)
		reply = ""
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "I ran into an issue preparing an answer. Please try again."
	}

	if len(sourceIDs) > 0 {
		reply += "\n\nSources: " + strings.Join(sourceIDs, ", ")
	}
	return reply
}

// RecommendFromCatalogue asks the model for up to max picks grounded in
// the indexed catalogue, rendered as a single numbered block. The
// result is always a non-empty, user-ready string.
func (e *Engine) RecommendFromCatalogue(ctx context.Context, preference string, max int) string {
	if strings.TrimSpace(preference) == "" {
		return `Please tell me a preference (e.g., "cozy fantasy heists" or "space opera politics").`
	}

	// Recommendation search casts a much wider net than QA and accepts
	// weaker matches; the model trims the pool down to max.
	poolSize := 30
	if max*10 > poolSize {
		poolSize = max * 10
	}
	recMinScore := minScore
	if recMinScore > 0.18 {
		recMinScore = 0.18
	}

	matches, err := e.search(ctx, preference, poolSize, recMinScore)
	if err != nil {
		e.logger.Printf("[ERROR] catalogue recommendation search failed: %v", err)
		return "Recommendations aren't available right now. Try again shortly."
	}

	groups := groupBySource(matches)
	if len(groups) == 0 {
		return NoMatchSentinel
	}

	prompt := fmt.Sprintf(`Recommend up to %d books that match the USER PREFERENCE using ONLY the CANDIDATE CONTEXT below.
Output exactly one recommendation per line as:
Title — one-line reason
Do NOT add numbering or bullets. No extra commentary.
If nothing fits well, return exactly:
%s

USER PREFERENCE:
%s

CANDIDATE CONTEXT (grouped by [SOURCE: id]):
%s`,
		max, NoMatchSentinel, strings.TrimSpace(preference),
		buildContextBlock(groups, maxSourcesInPrompt, maxSnippetsPerSource))

	raw, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		e.logger.Printf("[WARN] catalogue recommendation completion failed: %v", err)
		return "No strong matches right now. Try a broader or different vibe."
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, NoMatchSentinel) {
		return NoMatchSentinel
	}

	var cleaned []string
	for _, line := range strings.Split(trimmed, "\n") {
		t := stripListMarker(strings.TrimSpace(line))
		if t == "" {
			continue
		}
		cleaned = append(cleaned, t)
		if len(cleaned) == max {
			break
		}
	}
	if len(cleaned) == 0 {
		return NoMatchSentinel
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please choose a book (1-%d):\n", len(cleaned))
	for i, line := range cleaned {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
	}
	return strings.TrimSpace(sb.String())
}

// Search runs a raw similarity query against the index, for callers
// that want scored segments rather than composed text.
func (e *Engine) Search(ctx context.Context, query string, maxResults int, min float64) ([]index.Match, error) {
	return e.search(ctx, query, maxResults, min)
}

// Index exposes the underlying vector index (for the reindexer).
func (e *Engine) Index() index.Index {
	return e.idx
}

// Embed produces a document embedding for indexing.
func (e *Engine) Embed(text string) ([]float32, error) {
	res, err := e.embedder.Generate(text, taskTypeDocument)
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func (e *Engine) search(ctx context.Context, query string, maxResults int, min float64) ([]index.Match, error) {
	embedded, err := e.embedder.Generate(query, taskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := e.idx.Search(ctx, embedded.Embedding.Values, maxResults, min)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}
	return matches, nil
}

// --- Source grouping ---

var sourceTagRe = regexp.MustCompile(`(?i)^\s*\[\s*source\s*:\s*([^\]]+)\]\s*`)

type sourceGroup struct {
	source   string
	snippets []string
}

// groupBySource buckets matches by their [source:...] tag, keeping the
// descending-score order of first appearance.
func groupBySource(matches []index.Match) []sourceGroup {
	var groups []sourceGroup
	byName := map[string]int{}
	for _, m := range matches {
		text := m.Text
		if strings.TrimSpace(text) == "" {
			continue
		}
		source := "<unknown>"
		if tag := sourceTagRe.FindStringSubmatch(text); tag != nil {
			source = strings.TrimSpace(tag[1])
		}
		snippet := sanitizeSnippet(text)
		if snippet == "" {
			continue
		}
		i, ok := byName[source]
		if !ok {
			i = len(groups)
			byName[source] = i
			groups = append(groups, sourceGroup{source: source})
		}
		groups[i].snippets = append(groups[i].snippets, snippet)
	}
	return groups
}

func buildContextBlock(groups []sourceGroup, maxSources, maxSnippets int) string {
	var ctx strings.Builder
	count := 0
	for _, g := range groups {
		if count >= maxSources {
			break
		}
		if len(g.snippets) == 0 {
			continue
		}
		fmt.Fprintf(&ctx, "[SOURCE: %s]\n", g.source)
		for i, s := range g.snippets {
			if i >= maxSnippets {
				break
			}
			fmt.Fprintf(&ctx, "- %s\n", s)
		}
		ctx.WriteString("\n")
		count++
	}
	return strings.TrimSpace(ctx.String())
}

func sanitizeSnippet(text string) string {
	oneLine := strings.NewReplacer("\n", " ", "\r", " ").Replace(text)
	oneLine = strings.TrimSpace(oneLine)
	if len(oneLine) > maxSnippetLen {
		oneLine = oneLine[:maxSnippetLen] + " …"
	}
	return oneLine
}

var listMarkerRe = regexp.MustCompile(`^\s*([\-*•\d]+[.)])\s*`)

func stripListMarker(s string) string {
	return strings.TrimSpace(listMarkerRe.ReplaceAllString(s, ""))
}
