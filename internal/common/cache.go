package common

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a best-effort TTL side cache. The database remains the source of
// truth; cache misses and stale invalidation are always safe.
type Cache struct {
	*cache.Cache
}

// MaxCachedCommentPages bounds enumerated-key invalidation: the store cannot
// delete by pattern, so writers invalidate pages 1..MaxCachedCommentPages and
// readers only cache pages within that range.
const MaxCachedCommentPages = 5

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value any, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (any, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Delete(key string) {
	c.Cache.Delete(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyPost(id int64) string {
	return "post:" + strconv.FormatInt(id, 10)
}

func CacheKeyPostBySlug(slug string) string {
	return "post_slug:" + slug
}

// CacheKeyPosts serializes the filter set so every distinct listing query gets
// its own entry.
func CacheKeyPosts(filters any) string {
	b, err := json.Marshal(filters)
	if err != nil {
		return "posts:all"
	}
	return "posts:" + string(b)
}

func CacheKeyUser(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

func CacheKeyComments(postID int64, page int) string {
	return "comments:" + strconv.FormatInt(postID, 10) + ":" + strconv.Itoa(page)
}

// DeleteCommentPages drops every cached comment page for a post.
func (c *Cache) DeleteCommentPages(postID int64) {
	for page := 1; page <= MaxCachedCommentPages; page++ {
		c.Delete(CacheKeyComments(postID, page))
	}
}
