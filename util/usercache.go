package util

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"gorm.io/gorm"
)

type userEntry struct {
	userID uint
	email  string
}

// userLRU is a small LRU mapping userID -> email so request logging does not
// hit the users table on every call.
type userLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[uint]*list.Element
	capacity int
}

var userCache *userLRU

func (c *userLRU) get(userID uint) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.cache[userID]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(ele)
	if e, ok := ele.Value.(userEntry); ok {
		return e.email, true
	}
	return "", false
}

func (c *userLRU) set(userID uint, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[userID]; ok {
		c.ll.MoveToFront(ele)
		ele.Value = userEntry{userID: userID, email: email}
		return
	}
	c.cache[userID] = c.ll.PushFront(userEntry{userID: userID, email: email})
	if c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		if tail == nil {
			return
		}
		if e, ok := tail.Value.(userEntry); ok {
			delete(c.cache, e.userID)
		}
		c.ll.Remove(tail)
	}
}

// InitUserEmailCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitUserEmailCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	userCache = &userLRU{
		ll:       list.New(),
		cache:    make(map[uint]*list.Element),
		capacity: capacity,
	}
}

// UserEmailCacheGet returns email and true if present in cache.
func UserEmailCacheGet(userID uint) (string, bool) {
	if userCache == nil {
		return "", false
	}
	return userCache.get(userID)
}

// UserEmailCacheSet sets the email for a userID in the cache.
func UserEmailCacheSet(userID uint, email string) {
	if userCache == nil {
		return
	}
	userCache.set(userID, email)
}

// GetUserEmail returns the email for userID using cache, falling back to DB.
// If found in DB, caches the result.
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if email, ok := UserEmailCacheGet(userID); ok {
		return email
	}
	if db == nil {
		return ""
	}
	var u struct{ Email string }
	if err := db.Table("users").Select("email").Where("id = ?", userID).Take(&u).Error; err != nil {
		return ""
	}
	if u.Email != "" {
		UserEmailCacheSet(userID, u.Email)
	}
	return u.Email
}

// InitUserEmailCacheFromEnv initializes the cache using the env var USER_EMAIL_CACHE_SIZE
func InitUserEmailCacheFromEnv() {
	if n, err := strconv.Atoi(os.Getenv("USER_EMAIL_CACHE_SIZE")); err == nil {
		InitUserEmailCache(n)
		return
	}
	InitUserEmailCache(0)
}
