package infra

import (
	"fmt"
	"runtime"
	"sync"
)

var (
	uaMu             sync.RWMutex
	currentUserAgent = fmt.Sprintf("%s (%s; %s)", AppName, runtime.GOOS, runtime.GOARCH)
)

// GetUserAgent returns the User-Agent sent on REST and WS requests. (Thread-safe)
func GetUserAgent() string {
	uaMu.RLock()
	defer uaMu.RUnlock()
	return currentUserAgent
}

// SetUserAgent stamps the application version into the User-Agent. (Thread-safe)
func SetUserAgent(version string) {
	uaMu.Lock()
	defer uaMu.Unlock()
	currentUserAgent = fmt.Sprintf("%s/%s (%s; %s)", AppName, version, runtime.GOOS, runtime.GOARCH)
}
