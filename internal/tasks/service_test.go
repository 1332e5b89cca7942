package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Profile{}, &models.TaskTemplate{}, &models.UserTask{}, &models.Reminder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, profile *models.Profile) *models.User {
	t.Helper()
	u := models.User{Email: t.Name() + "@example.com", PasswordHash: "hash"}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if profile != nil {
		profile.UserID = u.ID
		if err := conn.Create(profile).Error; err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
	return &u
}

func seedTemplate(t *testing.T, conn *gorm.DB, tpl models.TaskTemplate) models.TaskTemplate {
	t.Helper()
	if err := conn.Create(&tpl).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tpl
}

func newTestService(conn *gorm.DB, now time.Time) *Service {
	svc := NewService(conn)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGenerateCreatesTasksAndReminders(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, &models.Profile{VisaType: "Student Worker", Purpose: "Work", City: "London", Nationality: "Irish"})

	seedTemplate(t, conn, models.TaskTemplate{Title: "Register with a GP", Category: models.CategoryHealthcare, DefaultPriority: "HIGH", SortOrder: 10})
	seedTemplate(t, conn, models.TaskTemplate{Title: "Get a SIM", Category: models.CategoryConnectivity, DefaultPriority: "LOW", SortOrder: 40})

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(conn, now)

	created, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created tasks, got %d", len(created))
	}
	if created[0].Title != "Register with a GP" || created[1].Title != "Get a SIM" {
		t.Fatalf("expected sortOrder processing, got %q then %q", created[0].Title, created[1].Title)
	}

	// Due-date law: HIGH -> 7 days, LOW -> 21 days.
	if got := created[0].DueAt.Sub(now); got != 7*24*time.Hour {
		t.Fatalf("HIGH task due offset = %v, want 168h", got)
	}
	if got := created[1].DueAt.Sub(now); got != 21*24*time.Hour {
		t.Fatalf("LOW task due offset = %v, want 504h", got)
	}

	var rems []models.Reminder
	if err := conn.Where("user_id = ?", user.ID).Order("remind_at ASC").Find(&rems).Error; err != nil {
		t.Fatalf("load reminders: %v", err)
	}
	if len(rems) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(rems))
	}
	for i, rem := range rems {
		task := created[i]
		if want := task.DueAt.Add(-48 * time.Hour); !rem.RemindAt.Equal(want) {
			t.Fatalf("reminder %d remindAt = %v, want dueAt-48h = %v", i, rem.RemindAt, want)
		}
		if rem.SentAt != nil {
			t.Fatalf("fresh reminder should be unsent")
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	seedTemplate(t, conn, models.TaskTemplate{Title: "Open a bank account", Category: models.CategoryFinancial, DefaultPriority: "MEDIUM", SortOrder: 1})

	svc := NewService(conn)
	first, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 task on first call, got %d", len(first))
	}

	second, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected empty list on repeat call, got %d", len(second))
	}

	var count int64
	if err := conn.Model(&models.UserTask{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no duplicate tasks, got %d", count)
	}
}

func TestGenerateFiltersByProfile(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, &models.Profile{VisaType: "Skilled Worker"})

	seedTemplate(t, conn, models.TaskTemplate{Title: "Everyone", Category: models.CategoryLegal, DefaultPriority: "MEDIUM", SortOrder: 1})
	seedTemplate(t, conn, models.TaskTemplate{Title: "Students only", Category: models.CategoryLegal, DefaultPriority: "HIGH", VisaTypeMatch: "Student", SortOrder: 2})

	svc := NewService(conn)
	created, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 1 || created[0].Title != "Everyone" {
		t.Fatalf("expected only the wildcard template, got %+v", created)
	}
}

func TestGenerateAbsentProfileTreatedAsEmpty(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil) // no profile row at all

	seedTemplate(t, conn, models.TaskTemplate{Title: "Wildcard", Category: models.CategoryLegal, DefaultPriority: "MEDIUM", SortOrder: 1})
	seedTemplate(t, conn, models.TaskTemplate{Title: "London only", Category: models.CategoryLegal, DefaultPriority: "MEDIUM", CityMatch: "London", SortOrder: 2})

	svc := NewService(conn)
	created, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 1 || created[0].Title != "Wildcard" {
		t.Fatalf("expected wildcard-only generation for missing profile, got %+v", created)
	}
}

func TestGenerateUnrecognizedPriorityFallsBackToMedium(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	seedTemplate(t, conn, models.TaskTemplate{Title: "Odd priority", Category: models.CategoryLegal, DefaultPriority: "whenever", SortOrder: 1})

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(conn, now)
	created, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created[0].Priority != models.PriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", created[0].Priority)
	}
	if got := created[0].DueAt.Sub(now); got != 14*24*time.Hour {
		t.Fatalf("due offset = %v, want 336h", got)
	}
}

func TestGenerateSkipsExistingFromPartialRun(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	tpl1 := seedTemplate(t, conn, models.TaskTemplate{Title: "First", Category: models.CategoryLegal, DefaultPriority: "HIGH", SortOrder: 1})
	seedTemplate(t, conn, models.TaskTemplate{Title: "Second", Category: models.CategoryLegal, DefaultPriority: "LOW", SortOrder: 2})

	// Simulate a partial prior run that created only the first task.
	existing := models.UserTask{UserID: user.ID, TemplateID: tpl1.ID, Title: "First", Category: models.CategoryLegal, Priority: models.PriorityHigh, Status: models.StatusPending}
	if err := conn.Create(&existing).Error; err != nil {
		t.Fatalf("seed existing: %v", err)
	}

	svc := NewService(conn)
	created, err := svc.Generate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Count guard fires: the user already has a task, so nothing is created.
	if len(created) != 0 {
		t.Fatalf("expected count guard to short-circuit, got %d tasks", len(created))
	}

	var count int64
	if err := conn.Model(&models.UserTask{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 task after guarded run, got %d", count)
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	svc := NewService(conn)

	day := func(d int) *time.Time {
		ts := time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	done := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.UserTask{
		{UserID: user.ID, TemplateID: "t1", Title: "completed early", Category: models.CategoryLegal, Priority: models.PriorityHigh, Status: models.StatusCompleted, DueAt: day(1), CompletedAt: &done},
		{UserID: user.ID, TemplateID: "t2", Title: "pending late", Category: models.CategoryLegal, Priority: models.PriorityLow, Status: models.StatusPending, DueAt: day(20)},
		{UserID: user.ID, TemplateID: "t3", Title: "pending early", Category: models.CategoryFinancial, Priority: models.PriorityMedium, Status: models.StatusPending, DueAt: day(5)},
		{UserID: user.ID, TemplateID: "t4", Title: "pending no due", Category: models.CategoryLegal, Priority: models.PriorityUrgent, Status: models.StatusPending},
		{UserID: user.ID, TemplateID: "t5", Title: "pending early urgent", Category: models.CategoryLegal, Priority: models.PriorityUrgent, Status: models.StatusPending, DueAt: day(5)},
	}
	for i := range seed {
		if err := conn.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	got, err := svc.List(context.Background(), user.ID, Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	titles := make([]string, len(got))
	for i, task := range got {
		titles[i] = task.Title
	}
	want := []string{"pending early urgent", "pending early", "pending late", "pending no due", "completed early"}
	if len(titles) != len(want) {
		t.Fatalf("got %d tasks, want %d (%v)", len(titles), len(want), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full order %v)", i, titles[i], want[i], titles)
		}
	}

	// Conjunctive filters.
	completedOnly, err := svc.List(context.Background(), user.ID, Filters{Status: "COMPLETED"})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completedOnly) != 1 || completedOnly[0].Title != "completed early" {
		t.Fatalf("status filter returned %+v", completedOnly)
	}

	both, err := svc.List(context.Background(), user.ID, Filters{Status: "PENDING", Category: "LEGAL", Priority: "URGENT"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("conjunctive filters returned %d tasks, want 2", len(both))
	}
}

func TestListScopedToOwner(t *testing.T) {
	conn := setupTestDB(t)
	owner := seedUser(t, conn, nil)
	other := models.User{Email: "other@example.com", PasswordHash: "hash"}
	if err := conn.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}
	if err := conn.Create(&models.UserTask{UserID: other.ID, TemplateID: "tx", Title: "foreign", Category: models.CategoryLegal, Priority: models.PriorityLow, Status: models.StatusPending}).Error; err != nil {
		t.Fatalf("seed foreign task: %v", err)
	}

	svc := NewService(conn)
	got, err := svc.List(context.Background(), owner.ID, Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no foreign tasks, got %d", len(got))
	}
}

func TestUpdateCompletedAtLifecycle(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	task := models.UserTask{UserID: user.ID, TemplateID: "t1", Title: "task", Category: models.CategoryLegal, Priority: models.PriorityMedium, Status: models.StatusPending}
	if err := conn.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(conn, now)

	completed := models.StatusCompleted
	updated, err := svc.Update(context.Background(), user.ID, task.ID, Patch{Status: &completed})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", updated.Status)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(now) {
		t.Fatalf("completedAt = %v, want %v", updated.CompletedAt, now)
	}

	// A redundant COMPLETED patch keeps the original timestamp.
	svc.now = func() time.Time { return now.Add(time.Hour) }
	high := models.PriorityHigh
	updated, err = svc.Update(context.Background(), user.ID, task.ID, Patch{Status: &completed, Priority: &high})
	if err != nil {
		t.Fatalf("redundant complete: %v", err)
	}
	if !updated.CompletedAt.Equal(now) {
		t.Fatalf("completedAt moved to %v on redundant update, want %v", updated.CompletedAt, now)
	}
	if updated.Priority != models.PriorityHigh {
		t.Fatalf("priority = %s, want HIGH", updated.Priority)
	}

	// Reopening clears completedAt.
	pending := models.StatusPending
	updated, err = svc.Update(context.Background(), user.ID, task.ID, Patch{Status: &pending})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if updated.Status != models.StatusPending || updated.CompletedAt != nil {
		t.Fatalf("reopen left status=%s completedAt=%v", updated.Status, updated.CompletedAt)
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task := models.UserTask{UserID: user.ID, TemplateID: "t1", Title: "task", Category: models.CategoryLegal, Priority: models.PriorityMedium, Status: models.StatusPending, DueAt: &due}
	if err := conn.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	svc := NewService(conn)
	notes := "bring passport"
	updated, err := svc.Update(context.Background(), user.ID, task.ID, Patch{Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("notes not applied: %+v", updated.Notes)
	}
	if updated.Status != models.StatusPending || updated.Priority != models.PriorityMedium {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.DueAt == nil || !updated.DueAt.Equal(due) {
		t.Fatalf("dueAt changed: %v", updated.DueAt)
	}

	newDue := due.AddDate(0, 0, 10)
	updated, err = svc.Update(context.Background(), user.ID, task.ID, Patch{DueAt: &newDue})
	if err != nil {
		t.Fatalf("update due: %v", err)
	}
	if !updated.DueAt.Equal(newDue) {
		t.Fatalf("dueAt = %v, want %v", updated.DueAt, newDue)
	}
}

func TestUpdateClearsDueDateAndNotes(t *testing.T) {
	conn := setupTestDB(t)
	user := seedUser(t, conn, nil)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	notes := "bring passport"
	task := models.UserTask{UserID: user.ID, TemplateID: "t1", Title: "task", Category: models.CategoryLegal, Priority: models.PriorityMedium, Status: models.StatusPending, DueAt: &due, Notes: &notes}
	if err := conn.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	svc := NewService(conn)
	updated, err := svc.Update(context.Background(), user.ID, task.ID, Patch{ClearDueAt: true, ClearNotes: true})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if updated.DueAt != nil || updated.Notes != nil {
		t.Fatalf("expected cleared fields, got dueAt=%v notes=%v", updated.DueAt, updated.Notes)
	}

	var row models.UserTask
	if err := conn.First(&row, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.DueAt != nil || row.Notes != nil {
		t.Fatalf("row not cleared: dueAt=%v notes=%v", row.DueAt, row.Notes)
	}
}

func TestUpdateNotFoundAndForeignLookAlike(t *testing.T) {
	conn := setupTestDB(t)
	owner := seedUser(t, conn, nil)
	other := models.User{Email: "intruder@example.com", PasswordHash: "hash"}
	if err := conn.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}
	task := models.UserTask{UserID: owner.ID, TemplateID: "t1", Title: "task", Category: models.CategoryLegal, Priority: models.PriorityMedium, Status: models.StatusPending}
	if err := conn.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	svc := NewService(conn)
	completed := models.StatusCompleted

	_, errMissing := svc.Update(context.Background(), owner.ID, "no-such-task", Patch{Status: &completed})
	_, errForeign := svc.Update(context.Background(), other.ID, task.ID, Patch{Status: &completed})

	if !errors.Is(errMissing, ErrTaskNotFound) || !errors.Is(errForeign, ErrTaskNotFound) {
		t.Fatalf("want ErrTaskNotFound for both, got missing=%v foreign=%v", errMissing, errForeign)
	}
	if errMissing.Error() != errForeign.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errMissing, errForeign)
	}
}
