package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// RecentActivityRequest asks for an owner's latest activity entries.
type RecentActivityRequest struct {
	OwnerID string `json:"owner_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// RecentActivityResponse carries activity entries, newest first.
type RecentActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
}

// ActivityPort is the interface other modules use to read the activity
// log.
type ActivityPort interface {
	RecentActivity(ctx context.Context, ownerID string, limit int) ([]ActivityEntry, error)
}

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) *ActivityAdapter {
	return &ActivityAdapter{container: container}
}

// RecentActivity returns the owner's latest activity entries.
func (a *ActivityAdapter) RecentActivity(ctx context.Context, ownerID string, limit int) ([]ActivityEntry, error) {
	req := RecentActivityRequest{OwnerID: ownerID, Limit: limit}
	var resp RecentActivityResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"recent-activity",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("recent-activity request failed: %w", err)
	}

	return resp.Entries, nil
}
