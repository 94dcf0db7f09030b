package endpoint

import (
	"sync"

	"github.com/medisync/hospital-api/util"
)

var (
	aiClientMu sync.RWMutex
	aiClientIn *util.AIClient
)

// SetAIClient installs the AI service client used by the AI-backed handlers.
// Call once at startup, or from tests pointing at a stub server.
func SetAIClient(client *util.AIClient) {
	aiClientMu.Lock()
	defer aiClientMu.Unlock()
	aiClientIn = client
}

func aiClient() *util.AIClient {
	aiClientMu.RLock()
	defer aiClientMu.RUnlock()
	if aiClientIn == nil {
		return util.NewAIClient("")
	}
	return aiClientIn
}
