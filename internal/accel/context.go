package accel

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/persona"
	"github.com/danielpatrickdp/zipf-dialogue/go-engine/internal/vocab"
)

// #region context
// Context holds the turn-scoped token sets for one (role, mood) pair: the
// tokens whose text matches the role's keyword list and, independently, the
// mood's keyword list. A Context is immutable once built and is fully
// replaced, never merged, when the turn context changes.
type Context struct {
	Role string
	Mood string

	roleTokens map[int]struct{}
	moodTokens map[int]struct{}
}

// InRole reports whether the token matched the role keyword list.
func (c *Context) InRole(id int) bool {
	_, ok := c.roleTokens[id]
	return ok
}

// InMood reports whether the token matched the mood keyword list.
func (c *Context) InMood(id int) bool {
	_, ok := c.moodTokens[id]
	return ok
}

// RoleCount returns the size of the role-matched set.
func (c *Context) RoleCount() int { return len(c.roleTokens) }

// MoodCount returns the size of the mood-matched set.
func (c *Context) MoodCount() int { return len(c.moodTokens) }

// #endregion context

// #region builder

const contextCacheSize = 16

// ContextBuilder constructs turn contexts by substring-matching persona
// keywords against the vocabulary. One build is O(vocabularySize × keywords),
// which is fine once per turn but far too costly per generation step, so the
// engine calls Build at most once per turn. Because the result is a pure
// function of (role, mood) over a fixed vocabulary, recent contexts are kept
// in a small LRU and revisiting a pair costs nothing.
type ContextBuilder struct {
	profile *vocab.Profile
	library *persona.Library
	cache   *lru.Cache[string, *Context]
}

// NewContextBuilder creates a builder over the given vocabulary profile and
// persona library.
func NewContextBuilder(profile *vocab.Profile, library *persona.Library) *ContextBuilder {
	cache, _ := lru.New[string, *Context](contextCacheSize)
	return &ContextBuilder{profile: profile, library: library, cache: cache}
}

// Build returns the context for a (role, mood) pair. Unknown role or mood
// labels are not errors: they carry empty keyword lists and therefore match
// no tokens.
func (b *ContextBuilder) Build(role, mood string) *Context {
	key := role + "\x00" + mood
	if ctx, ok := b.cache.Get(key); ok {
		return ctx
	}

	roleKeywords := b.library.RoleKeywords(role)
	moodKeywords := b.library.MoodKeywords(mood)

	ctx := &Context{
		Role:       role,
		Mood:       mood,
		roleTokens: matchTokens(b.profile, roleKeywords),
		moodTokens: matchTokens(b.profile, moodKeywords),
	}
	b.cache.Add(key, ctx)
	return ctx
}

// matchTokens collects every token whose lower-cased text contains any of the
// given keywords.
func matchTokens(profile *vocab.Profile, keywords []string) map[int]struct{} {
	matched := make(map[int]struct{})
	if len(keywords) == 0 {
		return matched
	}
	for id := 0; id < profile.Size(); id++ {
		text := profile.LowerText(id)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched[id] = struct{}{}
				break
			}
		}
	}
	return matched
}

// #endregion builder
