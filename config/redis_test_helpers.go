package config

import "sync"

// ResetRedisClientForTest clears the redis singleton so a test can drive
// ConnectRedis through its initialization path again. Test use only.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
