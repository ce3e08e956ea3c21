package repository

import (
	"strings"
	"time"

	"buildhub/internal/util"

	"go.uber.org/zap"
)

const defaultCacheExpiration = 15 * time.Minute

// cacheGet reads key into dest. A nil client or any error counts as a miss.
func cacheGet(redis *util.RedisClient, key string, dest interface{}) bool {
	if redis == nil {
		return false
	}
	return redis.GetJSON(key, dest) == nil
}

func cacheSet(redis *util.RedisClient, key string, value interface{}) {
	if redis == nil {
		return
	}
	if err := redis.Set(key, value, defaultCacheExpiration); err != nil {
		zap.L().Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheDelete(redis *util.RedisClient, keys ...string) {
	if redis == nil {
		return
	}
	if err := redis.Delete(keys...); err != nil {
		zap.L().Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func cacheDeletePattern(redis *util.RedisClient, pattern string) {
	if redis == nil {
		return
	}
	if err := redis.DeletePattern(pattern); err != nil {
		zap.L().Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q anywhere in a column
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
