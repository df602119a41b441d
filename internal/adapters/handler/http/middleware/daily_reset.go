package middleware

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
)

// DayBoundaryHooks are the once-per-day jobs: the login-streak touch
// and the pruning of every flow's today-only completion checkboxes.
type DayBoundaryHooks interface {
	TouchLogin(ctx context.Context, today string)
	ResetFlows(ctx context.Context, today string) error
}

// DailyResetMiddleware detects the day boundary lazily: the first
// request after midnight runs the hooks, everything else passes
// straight through.
func DailyResetMiddleware(hooks DayBoundaryHooks) gin.HandlerFunc {
	var mu sync.Mutex
	var lastDate string

	return func(c *gin.Context) {
		today := domain.DateKey(time.Now())

		mu.Lock()
		changed := lastDate != today
		if changed {
			lastDate = today
		}
		mu.Unlock()

		if changed {
			ctx := c.Request.Context()
			hooks.TouchLogin(ctx, today)
			if err := hooks.ResetFlows(ctx, today); err != nil {
				log.Printf("Daily reset failed: %v", err)
			}
		}

		c.Next()
	}
}
