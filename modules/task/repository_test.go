package task

import (
	"fmt"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedTask(t *testing.T, db *gorm.DB, ownerID, title, description string, createdAt time.Time) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}

func TestList_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	seedTask(t, db, "alice", "Alice task 1", "", now)
	seedTask(t, db, "alice", "Alice task 2", "", now)
	seedTask(t, db, "bob", "Bob task", "", now)

	page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if page.TotalCount != 2 {
		t.Errorf("expected 2 tasks for alice, got %d", page.TotalCount)
	}
	for _, item := range page.Items {
		if item.OwnerID != "alice" {
			t.Errorf("listing for alice returned task owned by %q", item.OwnerID)
		}
	}
}

func TestList_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	seedTask(t, db, "alice", "Buy Milk", "", now)
	seedTask(t, db, "alice", "Groceries", "need almond milk too", now)
	seedTask(t, db, "alice", "Walk the dog", "", now)
	seedTask(t, db, "bob", "milk the cows", "", now)

	page, err := repo.List(Query{OwnerID: "alice", Search: "milk", Ordering: DefaultOrder, Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if page.TotalCount != 2 {
		t.Fatalf("expected 2 matches, got %d", page.TotalCount)
	}
	for _, item := range page.Items {
		if item.Title == "Walk the dog" {
			t.Error("search returned a non-matching task")
		}
		if item.OwnerID != "alice" {
			t.Error("search crossed owner boundary")
		}
	}
}

func TestList_SearchEscapesWildcards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	seedTask(t, db, "alice", "Deploy 100% of services", "", now)
	seedTask(t, db, "alice", "Deploy half of services", "", now)

	page, err := repo.List(Query{OwnerID: "alice", Search: "100%", Ordering: DefaultOrder, Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("expected wildcard to be treated literally, got %d matches", page.TotalCount)
	}
}

func TestList_Ordering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedTask(t, db, "alice", "oldest", "", base)
	middle := seedTask(t, db, "alice", "middle", "", base.Add(1*time.Hour))
	newest := seedTask(t, db, "alice", "newest", "", base.Add(2*time.Hour))

	t.Run("default newest first", func(t *testing.T) {
		page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: 1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		got := []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
		want := []string{newest.ID, middle.ID, oldest.ID}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("created_at ascending", func(t *testing.T) {
		page, err := repo.List(Query{OwnerID: "alice", Ordering: OrderCreatedAt, Page: 1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if page.Items[0].ID != oldest.ID {
			t.Errorf("expected oldest first, got %q", page.Items[0].Title)
		}
	})

	t.Run("due_date ascending", func(t *testing.T) {
		due1 := base.Add(48 * time.Hour)
		due2 := base.Add(24 * time.Hour)
		if err := db.Model(oldest).Update("due_date", due1).Error; err != nil {
			t.Fatalf("failed to set due date: %v", err)
		}
		if err := db.Model(newest).Update("due_date", due2).Error; err != nil {
			t.Fatalf("failed to set due date: %v", err)
		}

		page, err := repo.List(Query{OwnerID: "alice", Ordering: OrderDueDate, Page: 1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		// The task without a due date sorts first in SQLite (NULLs first),
		// then earliest due date.
		last := page.Items[len(page.Items)-1]
		if last.ID != oldest.ID {
			t.Errorf("expected latest due date last, got %q", last.Title)
		}
	})
}

func TestList_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedTask(t, db, "alice", fmt.Sprintf("task %02d", i), "", base.Add(time.Duration(i)*time.Minute))
	}

	seen := make(map[string]bool)
	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: pageNum})
		if err != nil {
			t.Fatalf("List(page=%d) error = %v", pageNum, err)
		}

		wantLen := 10
		if pageNum == 3 {
			wantLen = 5
		}
		if len(page.Items) != wantLen {
			t.Errorf("page %d: expected %d items, got %d", pageNum, wantLen, len(page.Items))
		}
		if page.TotalCount != 25 {
			t.Errorf("page %d: expected total 25, got %d", pageNum, page.TotalCount)
		}

		for _, item := range page.Items {
			if seen[item.ID] {
				t.Errorf("task %q appeared on more than one page", item.Title)
			}
			seen[item.ID] = true
		}
	}

	if len(seen) != 25 {
		t.Errorf("expected all 25 tasks across pages, saw %d", len(seen))
	}
}

func TestList_PaginationStableWithEqualSortKeys(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	// Same created_at everywhere: only the id tie-break keeps pages
	// disjoint.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedTask(t, db, "alice", fmt.Sprintf("task %02d", i), "", at)
	}

	seen := make(map[string]bool)
	for pageNum := 1; pageNum <= 2; pageNum++ {
		page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: pageNum})
		if err != nil {
			t.Fatalf("List(page=%d) error = %v", pageNum, err)
		}
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Errorf("task %q appeared twice across pages", item.Title)
			}
			seen[item.ID] = true
		}
	}
	if len(seen) != 15 {
		t.Errorf("expected 15 distinct tasks, saw %d", len(seen))
	}
}

func TestList_OutOfRangePage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	seedTask(t, db, "alice", "only task", "", now)

	page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: 99})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(page.Items) != 0 {
		t.Errorf("expected empty page, got %d items", len(page.Items))
	}
	if page.TotalCount != 1 {
		t.Errorf("expected total count 1, got %d", page.TotalCount)
	}
	if page.PageNumber != 99 {
		t.Errorf("expected page number preserved, got %d", page.PageNumber)
	}
}

func TestList_InvalidPageDefaultsToFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	seedTask(t, db, "alice", "only task", "", now)

	page, err := repo.List(Query{OwnerID: "alice", Ordering: DefaultOrder, Page: 0})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.PageNumber != 1 {
		t.Errorf("expected page 1, got %d", page.PageNumber)
	}
	if len(page.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(page.Items))
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	if err := repo.Delete("missing-id"); err != ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
