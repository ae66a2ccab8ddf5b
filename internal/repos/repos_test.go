package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

func testDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.Account{},
		&types.Student{},
		&types.Staff{},
		&types.StaffRole{},
		&types.StaffStudentConnection{},
		&types.Establishment{},
		&types.EstablishmentCycle{},
		&types.Activity{},
		&types.ActivityQuestion{},
		&types.ActivityResponse{},
		&types.StudentActivity{},
		&types.VespaScore{},
		&types.QuestionResponse{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return db, log
}

func TestAccountGetOrCreateIdempotent(t *testing.T) {
	db, log := testDB(t)
	repo := NewAccountRepo(db, log)
	ctx := context.Background()

	first := &types.Account{
		ID:          uuid.New(),
		Email:       "jsmith@school.ac.uk",
		AccountType: types.AccountTypeStudent,
		FullName:    "Jane Smith",
	}
	id1, err := repo.GetOrCreate(ctx, nil, first)
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}

	second := &types.Account{
		ID:          uuid.New(),
		Email:       "jsmith@school.ac.uk",
		AccountType: types.AccountTypeStaff,
		FullName:    "Jane Smith",
	}
	id2, err := repo.GetOrCreate(ctx, nil, second)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same account id, got %s and %s", id1, id2)
	}

	var n int64
	if err := db.Model(&types.Account{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 account row, got %d", n)
	}
}

func TestStaffRoleAssignNoDuplicates(t *testing.T) {
	db, log := testDB(t)
	repo := NewStaffRepo(db, log)
	ctx := context.Background()
	accountID := uuid.New()

	role := &types.StaffRole{
		AccountID: accountID,
		Email:     "tutor@school.ac.uk",
		RoleType:  types.RoleTutor,
		IsPrimary: true,
	}
	if err := repo.AssignRole(ctx, nil, role); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	again := &types.StaffRole{
		AccountID: accountID,
		Email:     "tutor@school.ac.uk",
		RoleType:  types.RoleTutor,
		IsPrimary: false,
	}
	if err := repo.AssignRole(ctx, nil, again); err != nil {
		t.Fatalf("second assign: %v", err)
	}

	roles, err := repo.RolesForAccount(ctx, nil, accountID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}
	if roles[0].IsPrimary {
		t.Fatalf("expected is_primary refreshed to false")
	}

	other := &types.StaffRole{
		AccountID: accountID,
		Email:     "tutor@school.ac.uk",
		RoleType:  types.RoleHeadOfYear,
	}
	if err := repo.AssignRole(ctx, nil, other); err != nil {
		t.Fatalf("assign second role type: %v", err)
	}
	roles, err = repo.RolesForAccount(ctx, nil, accountID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}
}

func TestConnectionCreateDedupes(t *testing.T) {
	db, log := testDB(t)
	repo := NewConnectionRepo(db, log)
	ctx := context.Background()

	conn := &types.StaffStudentConnection{
		StaffEmail:     "tutor@school.ac.uk",
		StudentEmail:   "student@school.ac.uk",
		ConnectionType: types.ConnectionTutor,
	}
	created, err := repo.Create(ctx, nil, conn)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created {
		t.Fatalf("expected first create to insert")
	}

	dup := &types.StaffStudentConnection{
		StaffEmail:     "tutor@school.ac.uk",
		StudentEmail:   "student@school.ac.uk",
		ConnectionType: types.ConnectionTutor,
	}
	created, err = repo.Create(ctx, nil, dup)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate create to be a no-op")
	}

	n, err := repo.CountAll(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 connection, got %d", n)
	}

	// A different connection type between the same pair is a distinct row.
	hoy := &types.StaffStudentConnection{
		StaffEmail:     "tutor@school.ac.uk",
		StudentEmail:   "student@school.ac.uk",
		ConnectionType: types.ConnectionHeadOfYear,
	}
	created, err = repo.Create(ctx, nil, hoy)
	if err != nil {
		t.Fatalf("second type create: %v", err)
	}
	if !created {
		t.Fatalf("expected distinct connection type to insert")
	}
}

func TestActivityQuestionDisplayOrderBump(t *testing.T) {
	db, log := testDB(t)
	repo := NewActivityQuestionRepo(db, log)
	ctx := context.Background()
	activityID := uuid.New()

	q1 := &types.ActivityQuestion{ActivityID: activityID, QuestionTitle: "First", DisplayOrder: 1}
	if err := repo.Insert(ctx, nil, q1); err != nil {
		t.Fatalf("insert q1: %v", err)
	}
	q2 := &types.ActivityQuestion{ActivityID: activityID, QuestionTitle: "Second", DisplayOrder: 1}
	if err := repo.Insert(ctx, nil, q2); err != nil {
		t.Fatalf("insert q2: %v", err)
	}
	q3 := &types.ActivityQuestion{ActivityID: activityID, QuestionTitle: "Third", DisplayOrder: 1}
	if err := repo.Insert(ctx, nil, q3); err != nil {
		t.Fatalf("insert q3: %v", err)
	}

	rows, err := repo.ListForActivity(ctx, nil, activityID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(rows))
	}
	for i, row := range rows {
		if row.DisplayOrder != i+1 {
			t.Fatalf("expected display_order %d at position %d, got %d", i+1, i, row.DisplayOrder)
		}
	}
}

func TestActivityResponseUpsertUpdatesInPlace(t *testing.T) {
	db, log := testDB(t)
	repo := NewActivityResponseRepo(db, log)
	ctx := context.Background()
	activityID := uuid.New()

	started := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	resp := &types.ActivityResponse{
		StudentEmail: "student@school.ac.uk",
		ActivityID:   activityID,
		CycleNumber:  1,
		AcademicYear: "2025/2026",
		Status:       types.ResponseStatusInProgress,
		WordCount:    12,
		StartedAt:    &started,
	}
	if err := repo.Upsert(ctx, nil, resp); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	completed := started.Add(20 * time.Minute)
	update := &types.ActivityResponse{
		StudentEmail: "student@school.ac.uk",
		ActivityID:   activityID,
		CycleNumber:  1,
		AcademicYear: "2025/2026",
		Status:       types.ResponseStatusCompleted,
		WordCount:    240,
		StartedAt:    &started,
		CompletedAt:  &completed,
	}
	if err := repo.Upsert(ctx, nil, update); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.Get(ctx, nil, "student@school.ac.uk", activityID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a row")
	}
	if got.Status != types.ResponseStatusCompleted {
		t.Fatalf("expected status completed, got %q", got.Status)
	}
	if got.WordCount != 240 {
		t.Fatalf("expected word count 240, got %d", got.WordCount)
	}

	var n int64
	if err := db.Model(&types.ActivityResponse{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 response row, got %d", n)
	}
}

func TestVespaScoreLockedYear(t *testing.T) {
	db, log := testDB(t)
	repo := NewVespaScoreRepo(db, log)
	ctx := context.Background()
	studentID := uuid.New()

	year, err := repo.GetLockedYear(ctx, nil, studentID)
	if err != nil {
		t.Fatalf("locked year (empty): %v", err)
	}
	if year != "" {
		t.Fatalf("expected no locked year, got %q", year)
	}

	score := &types.VespaScore{
		StudentID:    studentID,
		Cycle:        1,
		AcademicYear: "2025/2026",
		Vision:       7, Effort: 6, Systems: 8, Practice: 5, Attitude: 7,
		Overall: 7,
	}
	if err := repo.Upsert(ctx, nil, score); err != nil {
		t.Fatalf("upsert cycle 1: %v", err)
	}

	year, err = repo.GetLockedYear(ctx, nil, studentID)
	if err != nil {
		t.Fatalf("locked year: %v", err)
	}
	if year != "2025/2026" {
		t.Fatalf("expected locked year 2025/2026, got %q", year)
	}

	// Re-submitting cycle 1 in the same year updates in place.
	score2 := &types.VespaScore{
		StudentID:    studentID,
		Cycle:        1,
		AcademicYear: "2025/2026",
		Vision:       8, Effort: 8, Systems: 8, Practice: 8, Attitude: 8,
		Overall: 8,
	}
	if err := repo.Upsert(ctx, nil, score2); err != nil {
		t.Fatalf("re-upsert cycle 1: %v", err)
	}
	got, err := repo.Get(ctx, nil, studentID, 1, "2025/2026")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Vision != 8 {
		t.Fatalf("expected updated vision 8, got %+v", got)
	}

	cycles, err := repo.CompletedCycles(ctx, nil, studentID, "2025/2026")
	if err != nil {
		t.Fatalf("completed cycles: %v", err)
	}
	if len(cycles) != 1 || cycles[0] != 1 {
		t.Fatalf("expected completed cycles [1], got %v", cycles)
	}
}

func TestQuestionResponseBatchUpsert(t *testing.T) {
	db, log := testDB(t)
	repo := NewQuestionResponseRepo(db, log)
	ctx := context.Background()
	studentID := uuid.New()

	batch := []*types.QuestionResponse{
		{StudentID: studentID, Cycle: 1, AcademicYear: "2025/2026", QuestionID: "q1", ResponseValue: 3},
		{StudentID: studentID, Cycle: 1, AcademicYear: "2025/2026", QuestionID: "q2", ResponseValue: 4},
	}
	if err := repo.UpsertBatch(ctx, nil, batch); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	again := []*types.QuestionResponse{
		{StudentID: studentID, Cycle: 1, AcademicYear: "2025/2026", QuestionID: "q1", ResponseValue: 5},
	}
	if err := repo.UpsertBatch(ctx, nil, again); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	rows, err := repo.ListForCycle(ctx, nil, studentID, 1, "2025/2026")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].QuestionID != "q1" || rows[0].ResponseValue != 5 {
		t.Fatalf("expected q1 updated to 5, got %+v", rows[0])
	}
}

func TestStudentUpsertRefreshesMutableFields(t *testing.T) {
	db, log := testDB(t)
	repo := NewStudentRepo(db, log)
	ctx := context.Background()

	s := &types.Student{
		Email:          "student@school.ac.uk",
		FirstName:      "Sam",
		LastName:       "Taylor",
		FullName:       "Sam Taylor",
		CurrentKnackID: "abc123",
		CurrentCycle:   1,
		IsActive:       true,
		Status:         "active",
	}
	if err := repo.Upsert(ctx, nil, s); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	moved := &types.Student{
		Email:          "student@school.ac.uk",
		FirstName:      "Sam",
		LastName:       "Taylor",
		FullName:       "Sam Taylor",
		CurrentKnackID: "def456",
		CurrentCycle:   1,
		IsActive:       true,
		Status:         "active",
	}
	if err := repo.Upsert(ctx, nil, moved); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByEmail(ctx, nil, "student@school.ac.uk")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a student row")
	}
	if got.CurrentKnackID != "def456" {
		t.Fatalf("expected refreshed knack id, got %q", got.CurrentKnackID)
	}

	var n int64
	if err := db.Model(&types.Student{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 student row, got %d", n)
	}
}
