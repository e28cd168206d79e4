package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// maxEntries bounds the in-memory activity log.
const maxEntries = 100

// ActivityEntry is one recorded task event.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationModule consumes task events and keeps a bounded activity
// log, queryable per owner.
type NotificationModule struct {
	entries []ActivityEntry
	mu      sync.RWMutex
}

// Compile-time interface checks.
var _ mono.Module = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)

// NewModule creates a new NotificationModule.
func NewModule() *NotificationModule {
	return &NotificationModule{
		entries: make([]ActivityEntry, 0, maxEntries),
	}
}

// Name returns the module name.
func (m *NotificationModule) Name() string {
	return "notification"
}

// Start initializes the module.
func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started")
	return nil
}

// Stop shuts down the module.
func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes to task lifecycle events.
func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskCompleted, TaskDeleted")
	return nil
}

// RegisterServices registers the recent-activity request-reply service.
func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"recent-activity",
		json.Unmarshal,
		json.Marshal,
		m.handleRecentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}

	log.Printf("[notification] Registered services: recent-activity")
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		Kind:      "created",
		TaskID:    event.TaskID,
		OwnerID:   event.OwnerID,
		Message:   fmt.Sprintf("Task %q created", event.Title),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *NotificationModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		Kind:      "completed",
		TaskID:    event.TaskID,
		OwnerID:   event.OwnerID,
		Message:   fmt.Sprintf("Task %q completed", event.Title),
		Timestamp: event.CompletedAt,
	})
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		Kind:      "deleted",
		TaskID:    event.TaskID,
		OwnerID:   event.OwnerID,
		Message:   fmt.Sprintf("Task %q deleted", event.Title),
		Timestamp: event.DeletedAt,
	})
	return nil
}

// handleRecentActivity handles the recent-activity service request.
func (m *NotificationModule) handleRecentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > maxEntries {
		limit = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first
	entries := make([]ActivityEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		if req.OwnerID == "" || m.entries[i].OwnerID == req.OwnerID {
			entries = append(entries, m.entries[i])
		}
	}

	return RecentActivityResponse{Entries: entries}, nil
}

func (m *NotificationModule) record(entry ActivityEntry) {
	entry.ID = uuid.New().String()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}
