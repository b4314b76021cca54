package main

import (
	"context"
	"time"

	"github.com/dixis/dixis/services"
	"github.com/dixis/dixis/ws"
)

const readyTimeout = 5 * time.Second

// registerHubCallbacks wires service lookups into the hub. The hub lives in
// ws and must not import services, so main connects the two.
func registerHubCallbacks(hub *ws.Hub, dashboard services.DashboardService) {
	hub.OnReady(func(userID int64) (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
		defer cancel()
		return dashboard.PendingCounts(ctx)
	})
}
