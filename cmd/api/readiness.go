package main

import (
	"github.com/andalib/andalib-backend/api/controllers"
	"github.com/andalib/andalib-backend/pkg/pubsub"
	"github.com/andalib/andalib-backend/pkg/redis"
)

// readinessChecks lists the dependencies /health/ready pings. Optional
// clients are added only when configured so a nil pointer never becomes a
// non-nil Pinger.
func readinessChecks(database controllers.Pinger, redisClient *redis.Client, psClient *pubsub.Client) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"database": database}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if psClient != nil {
		checks["pubsub"] = psClient
	}
	return checks
}
