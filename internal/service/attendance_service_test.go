package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/model"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// ── 测试辅助 ──

// 固定时钟：2024-01-10 09:30:15（本地时间）
var fixedNow = time.Date(2024, 1, 10, 9, 30, 15, 0, time.Local)

func setupTestServiceWith(t *testing.T, opts Options) (AttendanceService, *mockRepos) {
	t.Helper()
	repo, mocks := newMockRepos()
	dir := t.TempDir()
	if opts.ChartPath == "" {
		opts.ChartPath = filepath.Join(dir, "attendance_trend.png")
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	svc, err := NewAttendanceService(context.Background(), repo,
		export.NewExporter(filepath.Join(dir, "exports"), zap.NewNop()), opts, zap.NewNop())
	if err != nil {
		t.Fatalf("创建服务失败: %v", err)
	}
	return svc, mocks
}

func setupTestService(t *testing.T) (AttendanceService, *mockRepos) {
	t.Helper()
	return setupTestServiceWith(t, Options{})
}

// seedRecords 直接写入存储并重新加载
func seedRecords(t *testing.T, svc AttendanceService, mocks *mockRepos, recs ...model.AttendanceRecord) {
	t.Helper()
	mocks.attendance.records = append(mocks.attendance.records, recs...)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload 失败: %v", err)
	}
}

func rec(date, class, student string, status model.Status) model.AttendanceRecord {
	return model.AttendanceRecord{Date: date, ClassName: class, StudentUsername: student, Status: status, TimeIn: "09:00:00"}
}

// ── 构造 ──

func TestNewAttendanceService_StorageUnavailable(t *testing.T) {
	repo, mocks := newMockRepos()
	mocks.users.failList = true

	_, err := NewAttendanceService(context.Background(), repo, export.NewExporter(t.TempDir(), zap.NewNop()), Options{}, zap.NewNop())
	if !errors.Is(err, pkgerrors.ErrStorageUnavailable) {
		t.Errorf("期望 ErrStorageUnavailable，实际: %v", err)
	}
}

// ── AddUser / AddClass ──

func TestAttendanceService_AddUser_Uniqueness(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	msg, err := svc.AddUser(ctx, "s1", "pw", model.RoleStudent)
	if err != nil || msg != MsgUserAdded {
		t.Fatalf("首次新增应成功: msg=%q err=%v", msg, err)
	}

	_, err = svc.AddUser(ctx, "s1", "other", model.RoleLecturer)
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Fatalf("重复用户名期望 ErrDuplicateKey，实际: %v", err)
	}
	if ok, msg := Outcome("", err); ok || msg != MsgUsernameExists {
		t.Errorf("期望 (false, %q)，实际 (%v, %q)", MsgUsernameExists, ok, msg)
	}

	// 大小写敏感
	if _, err := svc.AddUser(ctx, "S1", "pw", model.RoleStudent); err != nil {
		t.Errorf("大小写不同的用户名应视为不同: %v", err)
	}
}

func TestAttendanceService_AddUser_InvalidRole(t *testing.T) {
	svc, mocks := setupTestService(t)

	_, err := svc.AddUser(context.Background(), "x", "pw", model.Role("teacher"))
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Errorf("期望 ErrInvalidArgument，实际: %v", err)
	}
	if len(mocks.users.users) != 1 {
		t.Error("非法角色不应写入存储")
	}
}

func TestAttendanceService_AddClass_Uniqueness(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if msg, err := svc.AddClass(ctx, "Math", "l1"); err != nil || msg != MsgClassAdded {
		t.Fatalf("首次新增应成功: msg=%q err=%v", msg, err)
	}
	_, err := svc.AddClass(ctx, "Math", "")
	if ok, msg := Outcome("", err); ok || msg != MsgClassExists {
		t.Errorf("期望 (false, %q)，实际 (%v, %q)", MsgClassExists, ok, msg)
	}

	classes := svc.Classes()
	if len(classes) != 1 || classes[0].LecturerUsername != "l1" {
		t.Errorf("班级列表不正确: %+v", classes)
	}
}

// ── DeleteUser / DeleteClass ──

func TestAttendanceService_DeleteUser(t *testing.T) {
	svc, mocks := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddUser(ctx, "s1", "pw", model.RoleStudent)

	ok, msg := Outcome(svc.DeleteUser(ctx, "ghost"))
	if ok || msg != "User 'ghost' not found." {
		t.Errorf("删除不存在的用户: (%v, %q)", ok, msg)
	}

	ok, msg = Outcome(svc.DeleteUser(ctx, "s1"))
	if !ok || msg != "User 's1' deleted." {
		t.Errorf("删除用户: (%v, %q)", ok, msg)
	}
	if _, found := svc.GetUser("s1"); found {
		t.Error("删除后快照中不应再有 s1")
	}
	for _, u := range mocks.users.users {
		if u.Username == "s1" {
			t.Error("删除后存储中不应再有 s1")
		}
	}
}

func TestAttendanceService_DeleteUser_KeepsAttendance(t *testing.T) {
	svc, mocks := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddUser(ctx, "s1", "pw", model.RoleStudent)
	seedRecords(t, svc, mocks, rec("2024-01-01", "C", "s1", model.StatusPresent))

	_, _ = svc.DeleteUser(ctx, "s1")
	if len(svc.GetStudentHistory("s1")) != 1 {
		t.Error("删除用户不应级联删除签到记录")
	}
}

func TestAttendanceService_DeleteClass(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddClass(ctx, "Math", "")

	ok, msg := Outcome(svc.DeleteClass(ctx, "Art"))
	if ok || msg != "Class 'Art' not found." {
		t.Errorf("删除不存在的班级: (%v, %q)", ok, msg)
	}
	ok, msg = Outcome(svc.DeleteClass(ctx, "Math"))
	if !ok || msg != "Class 'Math' deleted." {
		t.Errorf("删除班级: (%v, %q)", ok, msg)
	}
	if len(svc.Classes()) != 0 {
		t.Error("删除后班级列表应为空")
	}
}

// ── SetDisplayName / 列表 ──

func TestAttendanceService_SetDisplayName(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddUser(ctx, "s1", "pw", model.RoleStudent)

	if _, err := svc.SetDisplayName(ctx, "s1", "  Alice  "); err != nil {
		t.Fatalf("SetDisplayName 失败: %v", err)
	}
	u, _ := svc.GetUser("s1")
	if u.Label() != "s1 (Alice)" {
		t.Errorf("期望 Label=s1 (Alice)，实际=%s", u.Label())
	}

	_, err := svc.SetDisplayName(ctx, "ghost", "x")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestAttendanceService_RoleLists(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddUser(ctx, "l1", "pw", model.RoleLecturer)
	_, _ = svc.AddUser(ctx, "s1", "pw", model.RoleStudent)
	_, _ = svc.AddUser(ctx, "s2", "pw", model.RoleStudent)

	if got := svc.Students(); len(got) != 2 || got[0] != "s1" || got[1] != "s2" {
		t.Errorf("学生列表不正确: %v", got)
	}
	if got := svc.Lecturers(); len(got) != 1 || got[0] != "l1" {
		t.Errorf("讲师列表不正确: %v", got)
	}
	if got := svc.ListUsers(""); len(got) != 4 {
		t.Errorf("全部用户期望 4 个，实际=%d", len(got))
	}
}

// ── Authenticate ──

func TestAttendanceService_Authenticate(t *testing.T) {
	svc, _ := setupTestService(t)

	u, err := svc.Authenticate("  admin", "admin123  ")
	if err != nil || u.Role != model.RoleAdmin {
		t.Fatalf("去除空白后应认证成功: u=%v err=%v", u, err)
	}
	if _, err := svc.Authenticate("admin", "ADMIN123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码大小写敏感，期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := svc.Authenticate("nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── MarkAttendance ──

func TestAttendanceService_MarkAttendance_AtMostOncePerDay(t *testing.T) {
	svc, mocks := setupTestService(t)
	ctx := context.Background()

	msg, err := svc.MarkAttendance(ctx, "C", "s1", "")
	if err != nil || msg != MsgMarked {
		t.Fatalf("首次签到应成功: msg=%q err=%v", msg, err)
	}

	ok, msg := Outcome(svc.MarkAttendance(ctx, "C", "s1", model.StatusLate))
	if ok || msg != MsgAlreadyMarked {
		t.Errorf("同日重复签到期望 (false, %q)，实际 (%v, %q)", MsgAlreadyMarked, ok, msg)
	}

	key := model.RecordKey{Date: "2024-01-10", ClassName: "C", StudentUsername: "s1"}
	if n := mocks.attendance.count(key); n != 1 {
		t.Errorf("同一主键应只有 1 条记录，实际=%d", n)
	}

	r := mocks.attendance.records[0]
	if r.Status != model.StatusPresent || r.TimeIn != "09:30:15" {
		t.Errorf("默认状态与签到时间不正确: %+v", r)
	}
}

func TestAttendanceService_MarkAttendance_NextDayAllowed(t *testing.T) {
	svc, mocks := setupTestService(t)
	seedRecords(t, svc, mocks, rec("2024-01-09", "C", "s1", model.StatusPresent))

	if _, err := svc.MarkAttendance(context.Background(), "C", "s1", ""); err != nil {
		t.Errorf("不同日期的签到应成功: %v", err)
	}
}

func TestAttendanceService_MarkAttendance_StorageFailure(t *testing.T) {
	svc, mocks := setupTestService(t)
	mocks.attendance.failCreate = true

	_, err := svc.MarkAttendance(context.Background(), "C", "s1", "")
	if !errors.Is(err, pkgerrors.ErrStorageUnavailable) || IsBizError(err) {
		t.Errorf("存储故障不应伪装为业务错误，实际: %v", err)
	}
}

func TestAttendanceService_MarkAttendance_WithLocker(t *testing.T) {
	locker := &mockLocker{}
	svc, mocks := setupTestServiceWith(t, Options{Locker: locker})
	ctx := context.Background()

	if _, err := svc.MarkAttendance(ctx, "C", "s1", ""); err != nil {
		t.Fatalf("签到失败: %v", err)
	}
	if len(locker.acquired) != 1 || locker.acquired[0] != "2024-01-10|C|s1" || locker.released != 1 {
		t.Errorf("锁的获取与释放不正确: %+v", locker)
	}

	// 另一进程写入的记录在锁内重新加载后可见
	mocks.attendance.records = append(mocks.attendance.records, rec("2024-01-10", "C", "s2", model.StatusPresent))
	ok, msg := Outcome(svc.MarkAttendance(ctx, "C", "s2", ""))
	if ok || msg != MsgAlreadyMarked {
		t.Errorf("锁内应读取最新数据，实际 (%v, %q)", ok, msg)
	}
	if locker.released != 2 {
		t.Errorf("失败路径也应释放锁，released=%d", locker.released)
	}
}

func TestAttendanceService_MarkAttendance_LockBusy(t *testing.T) {
	svc, mocks := setupTestServiceWith(t, Options{Locker: &mockLocker{busy: true}})

	ok, msg := Outcome(svc.MarkAttendance(context.Background(), "C", "s1", ""))
	if ok || msg != MsgCheckInBusy {
		t.Errorf("锁被占用期望 (false, %q)，实际 (%v, %q)", MsgCheckInBusy, ok, msg)
	}
	if mocks.attendance.creates != 0 {
		t.Error("未取得锁时不应写入")
	}
}

// ── UpdateAttendance ──

func TestAttendanceService_UpdateAttendance(t *testing.T) {
	svc, mocks := setupTestService(t)
	ctx := context.Background()
	seedRecords(t, svc, mocks, rec("2024-01-01", "C", "s1", model.StatusPresent))

	ok, err := svc.UpdateAttendance(ctx, "2024-01-01", "C", "s1", model.StatusLate)
	if err != nil || !ok {
		t.Fatalf("更新应成功: ok=%v err=%v", ok, err)
	}
	if got := svc.GetAttendanceMapForDate("2024-01-01")["C"]["s1"]; got != model.StatusLate {
		t.Errorf("更新后快照应可见，实际=%s", got)
	}

	ok, err = svc.UpdateAttendance(ctx, "2024-01-02", "C", "s1", model.StatusLate)
	if err != nil || ok {
		t.Errorf("不存在的记录应返回 false: ok=%v err=%v", ok, err)
	}

	_, err = svc.UpdateAttendance(ctx, "2024-01-01", "C", "s1", model.Status("Sick"))
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Errorf("非法状态期望 ErrInvalidArgument，实际: %v", err)
	}
}

// ── 查询 ──

func TestAttendanceService_GetAttendanceMapForDate(t *testing.T) {
	svc, mocks := setupTestService(t)
	seedRecords(t, svc, mocks,
		rec("2024-01-01", "C", "S1", model.StatusPresent),
		rec("2024-01-01", "C", "S2", model.StatusAbsent),
		rec("2024-01-02", "C", "S3", model.StatusPresent),
		rec("2024-01-10", "D", "S1", model.StatusLate),
	)

	got := svc.GetAttendanceMapForDate("2024-01-01")
	if len(got) != 1 || len(got["C"]) != 2 || got["C"]["S1"] != model.StatusPresent || got["C"]["S2"] != model.StatusAbsent {
		t.Errorf("2024-01-01 聚合不正确: %v", got)
	}

	today := svc.GetAttendanceMapForDate("")
	if len(today) != 1 || today["D"]["S1"] != model.StatusLate {
		t.Errorf("默认日期应为今天: %v", today)
	}
}

func TestAttendanceService_GetClassAttendanceStats(t *testing.T) {
	svc, mocks := setupTestService(t)
	seedRecords(t, svc, mocks,
		rec("2024-01-01", "C", "S1", model.StatusPresent),
		rec("2024-01-02", "C", "S1", model.StatusPresent),
		rec("2024-01-02", "C", "S2", ""),
		rec("2024-01-02", "D", "S2", model.StatusLate),
	)

	stats := svc.GetClassAttendanceStats("C")
	if stats[model.StatusPresent] != 2 || stats[model.StatusAbsent] != 1 {
		t.Errorf("统计不正确（缺失状态应计为 Absent）: %v", stats)
	}
	if _, ok := stats[model.StatusExcused]; !ok || len(stats) != 4 {
		t.Errorf("四种状态应总是出现: %v", stats)
	}
}

func TestAttendanceService_GetStudentHistory_Ordering(t *testing.T) {
	svc, mocks := setupTestService(t)
	seedRecords(t, svc, mocks,
		rec("2024-01-02", "A", "s1", model.StatusPresent),
		rec("garbage", "B", "s1", model.StatusPresent),
		rec("2024-01-05", "C", "s1", model.StatusLate),
		rec("2024-01-03", "D", "s2", model.StatusPresent),
		rec("2024-01-03", "E", "s1", model.StatusPresent),
	)

	hist := svc.GetStudentHistory("s1")
	var got []string
	for _, r := range hist {
		got = append(got, r.ClassName)
	}
	want := []string{"C", "E", "A", "B"}
	if len(got) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("历史应按日期倒序且无法解析的在最后，期望 %v，实际 %v", want, got)
		}
	}
}

func TestAttendanceService_GetClassRoster(t *testing.T) {
	svc, mocks := setupTestService(t)
	ctx := context.Background()
	_, _ = svc.AddUser(ctx, "s1", "pw", model.RoleStudent)
	_, _ = svc.AddUser(ctx, "s2", "pw", model.RoleStudent)
	_, _ = svc.AddUser(ctx, "s3", "pw", model.RoleStudent)
	_, _ = svc.SetDisplayName(ctx, "s1", "Alice")
	seedRecords(t, svc, mocks,
		rec("2024-01-10", "C", "s1", model.StatusPresent),
		rec("2024-01-10", "C", "s2", model.StatusLate),
		rec("2024-01-09", "C", "s3", model.StatusPresent),
	)

	roster := svc.GetClassRoster("C", "")
	if roster.Date != "2024-01-10" || len(roster.Entries) != 3 {
		t.Fatalf("点名表不正确: %+v", roster)
	}
	if roster.Entries[0].Label != "s1 (Alice)" || roster.Entries[0].Status != model.StatusPresent {
		t.Errorf("s1 条目不正确: %+v", roster.Entries[0])
	}
	if roster.Entries[2].Status != model.StatusAbsent || roster.Entries[2].Recorded {
		t.Errorf("无当天记录的学生应为 Absent: %+v", roster.Entries[2])
	}
	if roster.Totals[model.StatusPresent] != 1 || roster.Totals[model.StatusLate] != 1 || roster.Totals[model.StatusAbsent] != 1 {
		t.Errorf("合计不正确: %v", roster.Totals)
	}
}

// ── Outcome ──

func TestOutcome(t *testing.T) {
	if ok, msg := Outcome("done", nil); !ok || msg != "done" {
		t.Errorf("成功结果不正确: (%v, %q)", ok, msg)
	}
	if ok, msg := Outcome("", bizErr(pkgerrors.ErrNotFound, "User '%s' not found.", "x")); ok || msg != "User 'x' not found." {
		t.Errorf("业务失败不正确: (%v, %q)", ok, msg)
	}
	if ok, msg := Outcome("", errors.New("boom")); ok || msg != "boom" {
		t.Errorf("其他错误不正确: (%v, %q)", ok, msg)
	}
}
