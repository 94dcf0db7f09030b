package util

import (
	"context"
	"fmt"
	"time"

	"github.com/medisync/hospital-api/config"
	"github.com/redis/go-redis/v9"
)

// removeSessionScript removes one token from a user's session set and drops
// the set itself once it is empty, in a single round trip.
const removeSessionScript = `
		local removed = redis.call('SREM', KEYS[1], ARGV[1])
		if removed > 0 then
			local count = redis.call('SCARD', KEYS[1])
			if count == 0 then
				redis.call('DEL', KEYS[1])
			end
		end
		return removed
	`

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// AddSessionToUserSet mirrors a freshly issued session token into Redis: the
// session:<token> key carries the user and role for fast middleware lookup,
// and the token is added to a per-user set used for bulk invalidation. Both
// keys expire with the session TTL.
func AddSessionToUserSet(userID uint, roleID uint32, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	pipe := rdb.Pipeline()
	pipe.Set(ctx, sessionKey(token), fmt.Sprintf("%d:%d", userID, roleID), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), token)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveSessionTokenFromUserSet removes a single session token from the
// per-user set and drops its session key. If the set becomes empty after
// removal, it is deleted.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return rdb.Eval(ctx, removeSessionScript, []string{userSessionsKey(userID)}, token).Err()
}

// InvalidateUserSessions deletes all session:<token> keys for the given user
// and removes the per-user set. Best-effort: it will return an error if Redis
// calls fail, but callers may choose to ignore it.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	members, err := rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, tok := range members {
		_ = rdb.Del(ctx, sessionKey(tok)).Err()
	}
	return rdb.Del(ctx, userSessionsKey(userID)).Err()
}
