package migration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/clients/knack"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/types"
)

type fakeLegacy struct {
	records map[string][]knack.Record
}

func (f *fakeLegacy) GetRecords(_ context.Context, objectKey string, _ *knack.Filters) ([]knack.Record, error) {
	return f.records[objectKey], nil
}

func testRunner(t *testing.T, records map[string][]knack.Record) (*Runner, *gorm.DB) {
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
		&types.VespaScore{},
		&types.Activity{},
		&types.ActivityQuestion{},
		&types.ActivityResponse{},
		&types.StudentActivity{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.RateLimitDelayMS = 1
	return NewRunner(cfg, db, &fakeLegacy{records: records}, log), db
}

func seedEstablishment(t *testing.T, db *gorm.DB, r *Runner) *types.Establishment {
	t.Helper()
	est := &types.Establishment{
		ID:      uuid.New(),
		KnackID: "5f0000000000000000000001",
		Name:    "Greenfield Academy",
		Status:  "Active",
	}
	if err := r.establishments.Upsert(context.Background(), nil, est); err != nil {
		t.Fatalf("seed establishment: %v", err)
	}
	return est
}

func TestAccountsPhase(t *testing.T) {
	records := map[string][]knack.Record{
		knack.ObjectAccounts: {
			{
				"id":             "acc1",
				"field_70_raw":   map[string]any{"email": "Jane.Doe@school.ac.uk"},
				"field_69_raw":   map[string]any{"first": "Jane", "last": "Doe", "full": "Jane Doe"},
				"field_73_raw":   []any{"profile_6"},
				knack.FieldAccountPortalType: "COACHING",
			},
			{
				"id":           "acc2",
				"field_70_raw": map[string]any{"email": "tutor@school.ac.uk"},
				"field_69_raw": map[string]any{"first": "Tom", "last": "Major", "full": "Tom Major"},
				"field_73_raw": []any{"profile_7", "profile_5"},
				knack.FieldAccountGroup:     "12B",
				knack.FieldAccountYearGroup: "12",
			},
			{
				// Student who also tutors: staff supersedes, both profiles written.
				"id":           "acc3",
				"field_70_raw": map[string]any{"email": "both@school.ac.uk"},
				"field_69_raw": map[string]any{"full": "Robin Field"},
				"field_73_raw": []any{"profile_6", "profile_7"},
			},
			{
				"id":           "acc4",
				"field_70_raw": map[string]any{"email": "mystery@school.ac.uk"},
				"field_73_raw": []any{"profile_99"},
			},
			{
				"id":           "acc5",
				"field_73_raw": []any{"profile_6"},
			},
		},
	}

	r, db := testRunner(t, records)
	seedEstablishment(t, db, r)
	ctx := context.Background()

	report := NewReport()
	if err := r.runAccounts(ctx, report.Phase(PhaseAccounts)); err != nil {
		t.Fatalf("accounts phase: %v", err)
	}
	stats := report.phases[0]

	if got := stats.Get("accounts_fetched"); got != 5 {
		t.Errorf("accounts_fetched = %d, want 5", got)
	}
	if got := stats.Get("students_created"); got != 2 {
		t.Errorf("students_created = %d, want 2", got)
	}
	if got := stats.Get("staff_created"); got != 2 {
		t.Errorf("staff_created = %d, want 2", got)
	}
	if got := stats.Get("skipped_unrecognized_profile"); got != 1 {
		t.Errorf("skipped_unrecognized_profile = %d, want 1", got)
	}
	if got := stats.Get("skipped_no_email"); got != 1 {
		t.Errorf("skipped_no_email = %d, want 1", got)
	}
	if got := stats.Get("multi_role"); got != 1 {
		t.Errorf("multi_role = %d, want 1", got)
	}

	acct, err := r.accounts.GetByEmail(ctx, nil, "both@school.ac.uk")
	if err != nil || acct == nil {
		t.Fatalf("multi-role account missing: %v", err)
	}
	if acct.AccountType != types.AccountTypeStaff {
		t.Errorf("multi-role account type = %q, want staff", acct.AccountType)
	}

	student, err := r.students.GetByEmail(ctx, nil, "jane.doe@school.ac.uk")
	if err != nil || student == nil {
		t.Fatalf("student row missing: %v", err)
	}
	if student.CurrentCycle != 1 || student.CurrentLevel != "Level 2" {
		t.Errorf("student defaults wrong: cycle=%d level=%q", student.CurrentCycle, student.CurrentLevel)
	}

	tutorAcct, err := r.accounts.GetByEmail(ctx, nil, "tutor@school.ac.uk")
	if err != nil || tutorAcct == nil {
		t.Fatalf("tutor account missing: %v", err)
	}
	roles, err := r.staff.RolesForAccount(ctx, nil, tutorAcct.ID)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("tutor roles = %d, want 2", len(roles))
	}
	for _, role := range roles {
		if role.IsPrimary {
			t.Errorf("role %s marked primary with two staff roles", role.RoleType)
		}
	}
}

func TestAccountsPhasePortalDefaultFlagsReview(t *testing.T) {
	records := map[string][]knack.Record{
		knack.ObjectAccounts: {
			{
				"id":           "acc1",
				"field_70_raw": map[string]any{"email": "noportal@school.ac.uk"},
				"field_73_raw": []any{"profile_6"},
			},
		},
	}
	r, db := testRunner(t, records)
	seedEstablishment(t, db, r)
	ctx := context.Background()

	report := NewReport()
	if err := r.runAccounts(ctx, report.Phase(PhaseAccounts)); err != nil {
		t.Fatalf("accounts phase: %v", err)
	}
	if got := report.phases[0].Get("portal_type_defaulted"); got != 1 {
		t.Errorf("portal_type_defaulted = %d, want 1", got)
	}

	acct, err := r.accounts.GetByEmail(ctx, nil, "noportal@school.ac.uk")
	if err != nil || acct == nil {
		t.Fatalf("account missing: %v", err)
	}
	if !acct.NeedsReview {
		t.Error("account with defaulted portal type not flagged for review")
	}
	if acct.PortalType != types.PortalCoaching {
		t.Errorf("portal type = %q, want %q", acct.PortalType, types.PortalCoaching)
	}
}

func TestConnectionsPhaseDropsThenHealsUnknownStaff(t *testing.T) {
	records := map[string][]knack.Record{
		knack.ObjectStudents: {
			{
				"id":           "stu1",
				"field_91_raw": map[string]any{"email": "pupil@school.ac.uk"},
				"field_1682_raw": []any{
					map[string]any{"id": "5f00000000000000000000aa", "identifier": "tutor@school.ac.uk"},
					map[string]any{"id": "5f00000000000000000000ab", "identifier": "ghost@school.ac.uk"},
				},
			},
		},
	}
	r, db := testRunner(t, records)
	est := seedEstablishment(t, db, r)
	ctx := context.Background()

	_, err := r.accounts.GetOrCreate(ctx, nil, &types.Account{
		ID:          uuid.New(),
		Email:       "tutor@school.ac.uk",
		AccountType: types.AccountTypeStaff,
		SchoolID:    &est.ID,
	})
	if err != nil {
		t.Fatalf("seed staff account: %v", err)
	}

	report := NewReport()
	if err := r.runConnections(ctx, report.Phase(PhaseConnections)); err != nil {
		t.Fatalf("connections phase: %v", err)
	}
	stats := report.phases[0]

	if got := stats.Get("connections_created"); got != 1 {
		t.Errorf("connections_created = %d, want 1", got)
	}
	if got := stats.Get("skipped_unknown_staff"); got != 1 {
		t.Errorf("skipped_unknown_staff = %d, want 1", got)
	}

	conns, err := r.connections.ListForStudent(ctx, nil, "pupil@school.ac.uk")
	if err != nil {
		t.Fatalf("list connections: %v", err)
	}
	if len(conns) != 1 || conns[0].ConnectionType != types.ConnectionTutor {
		t.Fatalf("connections = %+v, want one tutor link", conns)
	}

	// Re-run: nothing new, nothing duplicated.
	report2 := NewReport()
	if err := r.runConnections(ctx, report2.Phase(PhaseConnections)); err != nil {
		t.Fatalf("connections rerun: %v", err)
	}
	if got := report2.phases[0].Get("connections_created"); got != 0 {
		t.Errorf("rerun connections_created = %d, want 0", got)
	}
	if got := report2.phases[0].Get("connections_existing"); got != 1 {
		t.Errorf("rerun connections_existing = %d, want 1", got)
	}

	// Once the ghost lands in the staff table, the next run heals the
	// dropped link without duplicating the surviving one.
	_, err = r.accounts.GetOrCreate(ctx, nil, &types.Account{
		ID:          uuid.New(),
		Email:       "ghost@school.ac.uk",
		AccountType: types.AccountTypeStaff,
		SchoolID:    &est.ID,
	})
	if err != nil {
		t.Fatalf("seed ghost account: %v", err)
	}

	report3 := NewReport()
	if err := r.runConnections(ctx, report3.Phase(PhaseConnections)); err != nil {
		t.Fatalf("connections heal run: %v", err)
	}
	if got := report3.phases[0].Get("connections_created"); got != 1 {
		t.Errorf("heal run connections_created = %d, want 1", got)
	}
	if got := report3.phases[0].Get("skipped_unknown_staff"); got != 0 {
		t.Errorf("heal run skipped_unknown_staff = %d, want 0", got)
	}
	conns, err = r.connections.ListForStudent(ctx, nil, "pupil@school.ac.uk")
	if err != nil {
		t.Fatalf("list connections after heal: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("connections after heal = %d, want 2", len(conns))
	}
}

func writeCatalog(t *testing.T, entries []CatalogActivity) string {
	t.Helper()
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "activities.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestActivitiesAndQuestionsPhases(t *testing.T) {
	r, _ := testRunner(t, nil)
	ctx := context.Background()
	r.cfg.ActivitiesCatalog = writeCatalog(t, []CatalogActivity{
		{
			KnackID:       "5f0000000000000000000101",
			Name:          "Dream Big",
			VespaCategory: "VISION",
			Level:         "Level 2",
			Questions: []CatalogQuestion{
				{Title: "What is your goal?", Type: "paragraph", DisplayOrder: 1, Required: true},
				{Title: "Why does it matter?", Type: "paragraph", DisplayOrder: 1},
			},
		},
		{KnackID: "", Name: "broken entry"},
	})

	report := NewReport()
	if err := r.runActivities(ctx, report.Phase(PhaseActivities)); err != nil {
		t.Fatalf("activities phase: %v", err)
	}
	if got := report.phases[0].Get("activities_upserted"); got != 1 {
		t.Errorf("activities_upserted = %d, want 1", got)
	}
	if got := report.phases[0].Get("skipped_incomplete"); got != 1 {
		t.Errorf("skipped_incomplete = %d, want 1", got)
	}

	if err := r.runQuestions(ctx, report.Phase(PhaseQuestions)); err != nil {
		t.Fatalf("questions phase: %v", err)
	}
	if got := report.phases[1].Get("questions_created"); got != 2 {
		t.Errorf("questions_created = %d, want 2", got)
	}

	activity, err := r.activities.GetByKnackID(ctx, nil, "5f0000000000000000000101")
	if err != nil || activity == nil {
		t.Fatalf("activity missing: %v", err)
	}
	questions, err := r.questions.ListForActivity(ctx, nil, activity.ID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	// Duplicate display order in the file bumps, never collides.
	if questions[0].DisplayOrder == questions[1].DisplayOrder {
		t.Errorf("display orders collide at %d", questions[0].DisplayOrder)
	}
}

func TestActivitiesPhaseMissingCatalogAborts(t *testing.T) {
	r, _ := testRunner(t, nil)
	r.cfg.ActivitiesCatalog = "/nonexistent/activities.json"
	report := NewReport()
	if err := r.runActivities(context.Background(), report.Phase(PhaseActivities)); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestResponsesPhaseCreatesMissingStudent(t *testing.T) {
	activityKnackID := "5f0000000000000000000101"
	records := map[string][]knack.Record{
		knack.ObjectActivityAnswer: {
			{
				"id":             "resp1",
				"field_1301_raw": []any{map[string]any{"id": "stu1", "identifier": "new.pupil@school.ac.uk"}},
				"field_1302_raw": []any{map[string]any{"id": activityKnackID, "identifier": "Dream Big"}},
				"field_1300":     `{"q_1": "pass my exams"}`,
				"field_2334":     "<p>I want to pass my exams</p>",
				"field_1870":     "15/03/2025",
			},
			{
				"id":             "resp2",
				"field_1301_raw": []any{map[string]any{"id": "stu1", "identifier": "new.pupil@school.ac.uk"}},
				"field_1302_raw": []any{map[string]any{"id": "unknown", "identifier": "No Such Activity"}},
			},
		},
	}
	r, _ := testRunner(t, records)
	ctx := context.Background()

	err := r.activities.Upsert(ctx, nil, &types.Activity{
		ID:            uuid.New(),
		KnackID:       activityKnackID,
		Name:          "Dream Big",
		VespaCategory: "VISION",
	})
	if err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	report := NewReport()
	if err := r.runResponses(ctx, report.Phase(PhaseResponses)); err != nil {
		t.Fatalf("responses phase: %v", err)
	}
	stats := report.phases[0]

	if got := stats.Get("responses_migrated"); got != 1 {
		t.Errorf("responses_migrated = %d, want 1", got)
	}
	if got := stats.Get("skipped_unknown_activity"); got != 1 {
		t.Errorf("skipped_unknown_activity = %d, want 1", got)
	}
	if got := stats.Get("students_created"); got != 1 {
		t.Errorf("students_created = %d, want 1", got)
	}

	student, err := r.students.GetByEmail(ctx, nil, "new.pupil@school.ac.uk")
	if err != nil || student == nil {
		t.Fatalf("on-the-fly student missing: %v", err)
	}

	resps, err := r.responses.ListForStudent(ctx, nil, "new.pupil@school.ac.uk")
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(resps) != 1 {
		t.Fatalf("responses = %d, want 1", len(resps))
	}
	resp := resps[0]
	if resp.Status != types.ResponseStatusCompleted {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if resp.CycleNumber != 1 {
		t.Errorf("cycle = %d, want 1", resp.CycleNumber)
	}
	if resp.AcademicYear != "2024/2025" {
		t.Errorf("academic year = %q, want 2024/2025", resp.AcademicYear)
	}
	if resp.ResponsesText != "I want to pass my exams" {
		t.Errorf("responses text = %q, tags not stripped", resp.ResponsesText)
	}
	if resp.WordCount != 6 {
		t.Errorf("word count = %d, want 6", resp.WordCount)
	}
}

func TestStudentActivitiesPhase(t *testing.T) {
	prescribedID := "5f0000000000000000000101"
	addedID := "5f0000000000000000000102"
	records := map[string][]knack.Record{
		knack.ObjectStudents: {
			{
				"id":             "stu1",
				"field_91_raw":   map[string]any{"email": "pupil@school.ac.uk"},
				"field_1683_raw": []any{map[string]any{"id": prescribedID, "identifier": "Dream Big"}},
				"field_3580_raw": []any{map[string]any{"id": addedID, "identifier": "Tiny Habits"}},
				"field_1380":     prescribedID,
				"field_2335":     "Yes",
			},
		},
	}
	r, _ := testRunner(t, records)
	ctx := context.Background()

	for _, a := range []*types.Activity{
		{ID: uuid.New(), KnackID: prescribedID, Name: "Dream Big", VespaCategory: "VISION"},
		{ID: uuid.New(), KnackID: addedID, Name: "Tiny Habits", VespaCategory: "SYSTEMS"},
	} {
		if err := r.activities.Upsert(ctx, nil, a); err != nil {
			t.Fatalf("seed activity: %v", err)
		}
	}
	err := r.students.Upsert(ctx, nil, &types.Student{
		ID:    uuid.New(),
		Email: "pupil@school.ac.uk",
	})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	report := NewReport()
	if err := r.runStudentActivities(ctx, report.Phase(PhaseStudentActivities)); err != nil {
		t.Fatalf("student activities phase: %v", err)
	}
	stats := report.phases[0]

	if got := stats.Get("assignments_created"); got != 2 {
		t.Errorf("assignments_created = %d, want 2", got)
	}
	if got := stats.Get("completed_marked"); got != 1 {
		t.Errorf("completed_marked = %d, want 1", got)
	}

	assignments, err := r.assignments.ListForStudent(ctx, nil, "pupil@school.ac.uk", 0)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(assignments))
	}
	byReason := map[string]types.StudentActivity{}
	for _, sa := range assignments {
		byReason[sa.AssignedReason] = sa
	}
	if sa := byReason["prescribed"]; sa.Status != "completed" || sa.AssignedBy != types.AssignedByAuto {
		t.Errorf("prescribed assignment = %+v", sa)
	}
	if sa := byReason["self_selected"]; sa.Status != "assigned" || sa.AssignedBy != types.AssignedByStudent {
		t.Errorf("self-added assignment = %+v", sa)
	}

	student, err := r.students.GetByEmail(ctx, nil, "pupil@school.ac.uk")
	if err != nil || student == nil {
		t.Fatalf("student missing: %v", err)
	}
	if student.TotalActivitiesCompleted != 1 || student.TotalPoints != 10 {
		t.Errorf("totals = %d activities / %d points, want 1 / 10",
			student.TotalActivitiesCompleted, student.TotalPoints)
	}
	var prefs map[string]any
	if err := json.Unmarshal(student.Preferences, &prefs); err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs["completed_first_questionnaire"] != true {
		t.Errorf("preferences = %v, completed_first_questionnaire not set", prefs)
	}
}

func TestCycleDatesPhase(t *testing.T) {
	records := map[string][]knack.Record{
		knack.ObjectCycleDates: {
			{
				"id":             "cd1",
				"field_1579_raw": "1",
				"field_1678_raw": "15/09/2025",
				"field_1580_raw": "15/10/2025",
			},
			{
				"id":             "cd2",
				"field_1579_raw": float64(2),
				"field_1678_raw": "05/01/2026",
				"field_1580_raw": "05/02/2026",
			},
			{
				"id":             "cd3",
				"field_1579_raw": "9",
				"field_1678_raw": "01/03/2026",
				"field_1580_raw": "01/04/2026",
			},
		},
	}
	r, db := testRunner(t, records)
	est := seedEstablishment(t, db, r)
	ctx := context.Background()

	report := NewReport()
	if err := r.runCycleDates(ctx, report.Phase(PhaseCycleDates)); err != nil {
		t.Fatalf("cycle dates phase: %v", err)
	}
	stats := report.phases[0]
	if got := stats.Get("windows_upserted"); got != 2 {
		t.Errorf("windows_upserted = %d, want 2", got)
	}
	if got := stats.Get("skipped_invalid_cycle"); got != 1 {
		t.Errorf("skipped_invalid_cycle = %d, want 1", got)
	}

	cycles, err := r.establishments.Cycles(ctx, nil, est.ID)
	if err != nil {
		t.Fatalf("cycles: %v", err)
	}
	if len(cycles) != 2 || cycles[0].Cycle != 1 || cycles[1].Cycle != 2 {
		t.Fatalf("cycles = %+v, want windows 1 and 2", cycles)
	}
	if cycles[0].StartDate == nil || cycles[0].StartDate.Day() != 15 {
		t.Errorf("cycle 1 start = %v, want 15/09/2025", cycles[0].StartDate)
	}

	// The windows must reach the eligibility check's read path.
	source := services.NewRepoWindowSource(r.establishments, r.log)
	windows, err := source.WindowsFor(ctx, nil, &services.EstablishmentInfo{ID: est.ID})
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("window source sees %d windows, want 2", len(windows))
	}

	// Re-run: same windows, no duplicates.
	report2 := NewReport()
	if err := r.runCycleDates(ctx, report2.Phase(PhaseCycleDates)); err != nil {
		t.Fatalf("cycle dates rerun: %v", err)
	}
	cycles, err = r.establishments.Cycles(ctx, nil, est.ID)
	if err != nil {
		t.Fatalf("cycles after rerun: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("cycles after rerun = %d, want 2", len(cycles))
	}
}

func TestScoresPhase(t *testing.T) {
	records := map[string][]knack.Record{
		knack.ObjectVespaResults: {
			{
				"id":             "res1",
				"field_197_raw":  map[string]any{"email": "pupil@school.ac.uk"},
				"field_1679_raw": "Yes",
				"field_855_raw":  "10/11/2024",
				"field_155_raw":  "8",
				"field_156_raw":  "7",
				"field_157_raw":  "6",
				"field_158_raw":  "5",
				"field_159_raw":  "9",
				"field_160_raw":  "7",
			},
			{
				"id":            "res2",
				"field_197_raw": map[string]any{"email": "stranger@school.ac.uk"},
				"field_155_raw": "4",
			},
		},
	}
	r, db := testRunner(t, records)
	est := seedEstablishment(t, db, r)
	ctx := context.Background()

	err := r.students.Upsert(ctx, nil, &types.Student{
		Email:      "pupil@school.ac.uk",
		FullName:   "Pat Pupil",
		SchoolID:   &est.ID,
		SchoolName: est.Name,
	})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	report := NewReport()
	if err := r.runScores(ctx, report.Phase(PhaseScores)); err != nil {
		t.Fatalf("scores phase: %v", err)
	}
	stats := report.phases[0]
	if got := stats.Get("results_fetched"); got != 2 {
		t.Errorf("results_fetched = %d, want 2", got)
	}
	if got := stats.Get("scores_written"); got != 1 {
		t.Errorf("scores_written = %d, want 1", got)
	}
	if got := stats.Get("overrides_set"); got != 1 {
		t.Errorf("overrides_set = %d, want 1", got)
	}
	if got := stats.Get("skipped_unknown_student"); got != 1 {
		t.Errorf("skipped_unknown_student = %d, want 1", got)
	}

	student, err := r.students.GetByEmail(ctx, nil, "pupil@school.ac.uk")
	if err != nil || student == nil {
		t.Fatalf("student missing: %v", err)
	}
	if !student.CycleUnlocked {
		t.Error("cycle unlock override not carried over")
	}

	// Completion date 10/11/2024 files the row under 2024/2025.
	score, err := r.scores.Get(ctx, nil, student.ID, 1, "2024/2025")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score == nil {
		t.Fatal("cycle 1 score row missing")
	}
	if score.Vision != 8 || score.Attitude != 9 || score.Overall != 7 {
		t.Errorf("score = %+v, want vision 8 attitude 9 overall 7", score)
	}
	if score.CompletionDate == nil {
		t.Error("completion date not carried over")
	}
	if empty, err := r.scores.Get(ctx, nil, student.ID, 2, "2024/2025"); err != nil || empty != nil {
		t.Errorf("unexpected cycle 2 row: %+v (err %v)", empty, err)
	}
}
