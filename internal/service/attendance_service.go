package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/internal/repository"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
	"github.com/byliew07/CheckMeIN/pkg/redis"
)

// DefaultTrendDays 出勤率窗口的默认天数
const DefaultTrendDays = 14

// Locker 签到互斥锁（可选），由 pkg/redis.Client 实现
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AttendanceService 签到业务接口
//
// 设计说明：
//   - 服务持有三张表的内存快照，每次写操作成功后整体重新加载
//   - 查询类方法只读快照，不访问存储
//   - 签到查重是"先查快照再写入"，多进程并发时可能重复；配置 Locker 后在锁内重新加载再查重
type AttendanceService interface {
	Reload(ctx context.Context) error

	AddUser(ctx context.Context, username, password string, role model.Role) (string, error)
	AddClass(ctx context.Context, className, lecturer string) (string, error)
	DeleteUser(ctx context.Context, username string) (string, error)
	DeleteClass(ctx context.Context, className string) (string, error)
	SetDisplayName(ctx context.Context, username, displayName string) (string, error)

	MarkAttendance(ctx context.Context, className, student string, status model.Status) (string, error)
	UpdateAttendance(ctx context.Context, date, className, student string, status model.Status) (bool, error)

	Authenticate(username, password string) (*model.User, error)
	GetUser(username string) (*model.User, bool)
	ListUsers(role model.Role) []model.User
	Students() []string
	Lecturers() []string
	Classes() []model.Class

	GetAttendanceMapForDate(date string) map[string]map[string]model.Status
	GetClassAttendanceStats(className string) map[model.Status]int
	GetAttendanceHistoryForClass(className string, days int) []DailyRate
	GetStudentHistory(username string) []model.AttendanceRecord
	GetClassRoster(className, date string) *Roster

	ExportClassStatsToExcel(ctx context.Context, className string) (*export.Result, error)
	ExportStudentHistoryToExcel(ctx context.Context, username string) (*export.Result, error)
	PlotAttendanceTrend(ctx context.Context, className string) (string, error)
}

// Options AttendanceService 可选项
type Options struct {
	ChartPath string           // 趋势图固定输出路径
	TrendDays int              // 趋势图窗口，<=0 时为 14
	Locker    Locker           // 为空时不加锁
	Now       func() time.Time // 为空时为 time.Now
}

// snapshot 最近一次加载的三张表
type snapshot struct {
	users    []model.User
	userIdx  map[string]int
	classes  []model.Class
	classIdx map[string]int
	records  []model.AttendanceRecord
}

type attendanceService struct {
	repo     *repository.Repository
	exporter *export.Exporter
	opts     Options
	now      func() time.Time
	logger   *zap.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// NewAttendanceService 创建 AttendanceService 并加载初始快照
// 初始加载失败说明存储不可用，调用方应终止会话
func NewAttendanceService(
	ctx context.Context,
	repo *repository.Repository,
	exporter *export.Exporter,
	opts Options,
	logger *zap.Logger,
) (AttendanceService, error) {
	if opts.TrendDays <= 0 {
		opts.TrendDays = DefaultTrendDays
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &attendanceService{
		repo:     repo,
		exporter: exporter,
		opts:     opts,
		now:      now,
		logger:   logger,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ════════════════════════════════════════════════════════════
// Reload — 重新加载快照
// ════════════════════════════════════════════════════════════

func (s *attendanceService) Reload(ctx context.Context) error {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("加载用户表失败", zap.Error(err))
		return err
	}
	classes, err := s.repo.Class.List(ctx)
	if err != nil {
		s.logger.Error("加载班级表失败", zap.Error(err))
		return err
	}
	records, err := s.repo.Attendance.List(ctx)
	if err != nil {
		s.logger.Error("加载签到表失败", zap.Error(err))
		return err
	}

	snap := &snapshot{
		users:    users,
		userIdx:  make(map[string]int, len(users)),
		classes:  classes,
		classIdx: make(map[string]int, len(classes)),
		records:  records,
	}
	for i, u := range users {
		snap.userIdx[u.Username] = i
	}
	for i, c := range classes {
		snap.classIdx[c.ClassName] = i
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

func (s *attendanceService) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ════════════════════════════════════════════════════════════
// 用户与班级
// ════════════════════════════════════════════════════════════

func (s *attendanceService) AddUser(ctx context.Context, username, password string, role model.Role) (string, error) {
	if username == "" {
		return "", bizErr(pkgerrors.ErrInvalidArgument, "Username is required")
	}
	if !role.Valid() {
		return "", bizErr(pkgerrors.ErrInvalidArgument, "Invalid role '%s'", role)
	}
	if _, ok := s.current().userIdx[username]; ok {
		return "", bizErr(pkgerrors.ErrDuplicateKey, MsgUsernameExists)
	}

	user := &model.User{Username: username, Password: password, Role: role}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return "", bizErr(pkgerrors.ErrDuplicateKey, MsgUsernameExists)
		}
		s.logger.Error("新增用户失败", zap.String("username", username), zap.Error(err))
		return "", err
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("新增用户", zap.String("username", username), zap.String("role", string(role)))
	return MsgUserAdded, nil
}

func (s *attendanceService) AddClass(ctx context.Context, className, lecturer string) (string, error) {
	if className == "" {
		return "", bizErr(pkgerrors.ErrInvalidArgument, "Class name is required")
	}
	if _, ok := s.current().classIdx[className]; ok {
		return "", bizErr(pkgerrors.ErrDuplicateKey, MsgClassExists)
	}

	class := &model.Class{ClassName: className, LecturerUsername: lecturer}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return "", bizErr(pkgerrors.ErrDuplicateKey, MsgClassExists)
		}
		s.logger.Error("新增班级失败", zap.String("class_name", className), zap.Error(err))
		return "", err
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("新增班级", zap.String("class_name", className), zap.String("lecturer", lecturer))
	return MsgClassAdded, nil
}

// DeleteUser 删除用户；其签到记录保留
func (s *attendanceService) DeleteUser(ctx context.Context, username string) (string, error) {
	deleted, err := s.repo.User.Delete(ctx, username)
	if err != nil {
		s.logger.Error("删除用户失败", zap.String("username", username), zap.Error(err))
		return "", err
	}
	if !deleted {
		return "", bizErr(pkgerrors.ErrNotFound, "User '%s' not found.", username)
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("删除用户", zap.String("username", username))
	return fmt.Sprintf("User '%s' deleted.", username), nil
}

func (s *attendanceService) DeleteClass(ctx context.Context, className string) (string, error) {
	deleted, err := s.repo.Class.Delete(ctx, className)
	if err != nil {
		s.logger.Error("删除班级失败", zap.String("class_name", className), zap.Error(err))
		return "", err
	}
	if !deleted {
		return "", bizErr(pkgerrors.ErrNotFound, "Class '%s' not found.", className)
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("删除班级", zap.String("class_name", className))
	return fmt.Sprintf("Class '%s' deleted.", className), nil
}

func (s *attendanceService) SetDisplayName(ctx context.Context, username, displayName string) (string, error) {
	displayName = strings.TrimSpace(displayName)
	updated, err := s.repo.User.UpdateDisplayName(ctx, username, displayName)
	if err != nil {
		s.logger.Error("设置显示名失败", zap.String("username", username), zap.Error(err))
		return "", err
	}
	if !updated {
		return "", bizErr(pkgerrors.ErrNotFound, "User '%s' not found.", username)
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("设置显示名", zap.String("username", username), zap.String("display_name", displayName))
	return MsgDisplayNameSet, nil
}

// ════════════════════════════════════════════════════════════
// 签到
// ════════════════════════════════════════════════════════════

// MarkAttendance 为学生登记今天的签到，status 为空时为 Present
func (s *attendanceService) MarkAttendance(ctx context.Context, className, student string, status model.Status) (string, error) {
	if status == "" {
		status = model.StatusPresent
	}
	if !status.Valid() {
		return "", bizErr(pkgerrors.ErrInvalidArgument, "Invalid status '%s'", status)
	}

	now := s.now()
	rec := &model.AttendanceRecord{
		Date:            now.Format(model.DateLayout),
		ClassName:       className,
		StudentUsername: student,
		Status:          status,
		TimeIn:          now.Format(model.TimeLayout),
	}

	if s.opts.Locker != nil {
		release, err := s.opts.Locker.Acquire(ctx, lockKey(rec.Key()))
		if err != nil {
			if errors.Is(err, redis.ErrLockBusy) {
				return "", bizErr(pkgerrors.ErrDuplicateKey, MsgCheckInBusy)
			}
			s.logger.Error("获取签到锁失败", zap.Error(err))
			return "", err
		}
		defer release()

		// 锁内读取最新数据，其他进程的写入可见
		if err := s.Reload(ctx); err != nil {
			return "", err
		}
	}

	key := rec.Key()
	for _, r := range s.current().records {
		if r.Key() == key {
			return "", bizErr(pkgerrors.ErrDuplicateKey, MsgAlreadyMarked)
		}
	}

	if err := s.repo.Attendance.Create(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return "", bizErr(pkgerrors.ErrDuplicateKey, MsgAlreadyMarked)
		}
		s.logger.Error("写入签到记录失败", zap.String("class_name", className), zap.String("student", student), zap.Error(err))
		return "", err
	}
	if err := s.Reload(ctx); err != nil {
		return "", err
	}

	s.logger.Info("签到成功",
		zap.String("class_name", className),
		zap.String("student", student),
		zap.String("status", string(status)),
		zap.String("date", rec.Date),
	)
	return MsgMarked, nil
}

func lockKey(k model.RecordKey) string {
	return k.Date + "|" + k.ClassName + "|" + k.StudentUsername
}

// UpdateAttendance 按自然主键改写状态；记录不存在时返回 false
func (s *attendanceService) UpdateAttendance(ctx context.Context, date, className, student string, status model.Status) (bool, error) {
	if !status.Valid() {
		return false, bizErr(pkgerrors.ErrInvalidArgument, "Invalid status '%s'", status)
	}

	key := model.RecordKey{Date: date, ClassName: className, StudentUsername: student}
	updated, err := s.repo.Attendance.UpdateStatus(ctx, key, status)
	if err != nil {
		s.logger.Error("更新签到状态失败", zap.String("class_name", className), zap.String("student", student), zap.Error(err))
		return false, err
	}
	if !updated {
		return false, nil
	}
	if err := s.Reload(ctx); err != nil {
		return false, err
	}

	s.logger.Info("更新签到状态",
		zap.String("date", date),
		zap.String("class_name", className),
		zap.String("student", student),
		zap.String("status", string(status)),
	)
	return true, nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

// Authenticate 校验用户名与密码（去除首尾空白后明文比较）
func (s *attendanceService) Authenticate(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	u, ok := s.GetUser(username)
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *attendanceService) GetUser(username string) (*model.User, bool) {
	snap := s.current()
	i, ok := snap.userIdx[username]
	if !ok {
		return nil, false
	}
	u := snap.users[i]
	return &u, true
}

// ListUsers 按文件顺序列出用户；role 为空时返回全部
func (s *attendanceService) ListUsers(role model.Role) []model.User {
	var out []model.User
	for _, u := range s.current().users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (s *attendanceService) Students() []string { return s.usernames(model.RoleStudent) }
func (s *attendanceService) Lecturers() []string { return s.usernames(model.RoleLecturer) }

func (s *attendanceService) usernames(role model.Role) []string {
	var out []string
	for _, u := range s.current().users {
		if u.Role == role {
			out = append(out, u.Username)
		}
	}
	return out
}

func (s *attendanceService) Classes() []model.Class {
	return append([]model.Class(nil), s.current().classes...)
}

func (s *attendanceService) today() string {
	return s.now().Format(model.DateLayout)
}

// GetAttendanceMapForDate 返回 班级 → 学生 → 状态；date 为空时为今天
func (s *attendanceService) GetAttendanceMapForDate(date string) map[string]map[string]model.Status {
	if date == "" {
		date = s.today()
	}
	out := make(map[string]map[string]model.Status)
	for _, r := range s.current().records {
		if r.Date != date {
			continue
		}
		byStudent, ok := out[r.ClassName]
		if !ok {
			byStudent = make(map[string]model.Status)
			out[r.ClassName] = byStudent
		}
		byStudent[r.StudentUsername] = r.Status
	}
	return out
}

// GetClassAttendanceStats 统计班级全部记录的状态分布；四种状态总是出现
func (s *attendanceService) GetClassAttendanceStats(className string) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for _, r := range s.current().records {
		if r.ClassName == className {
			counts[r.EffectiveStatus()]++
		}
	}
	return counts
}

// GetStudentHistory 返回学生的全部记录，按日期倒序；日期无法解析的排在最后
func (s *attendanceService) GetStudentHistory(username string) []model.AttendanceRecord {
	var recs []model.AttendanceRecord
	for _, r := range s.current().records {
		if r.StudentUsername == username {
			recs = append(recs, r)
		}
	}

	sortKey := func(r model.AttendanceRecord) time.Time {
		d, _ := r.ParsedDate() // 解析失败为零值，即最早
		return d
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return sortKey(recs[i]).After(sortKey(recs[j]))
	})
	return recs
}

// ── 点名表 ──

// RosterEntry 点名表中的一名学生
type RosterEntry struct {
	Username string       `json:"username"`
	Label    string       `json:"label"`
	Status   model.Status `json:"status"`
	Recorded bool         `json:"recorded"` // 是否有当天记录；无记录时 Status 为 Absent
}

// Roster 某班某天的点名表
type Roster struct {
	ClassName string               `json:"class_name"`
	Date      string               `json:"date"`
	Entries   []RosterEntry        `json:"entries"`
	Totals    map[model.Status]int `json:"totals"`
}

// GetClassRoster 列出全部学生在指定日期的状态，无记录的按 Absent；date 为空时为今天
func (s *attendanceService) GetClassRoster(className, date string) *Roster {
	if date == "" {
		date = s.today()
	}
	byStudent := s.GetAttendanceMapForDate(date)[className]

	roster := &Roster{
		ClassName: className,
		Date:      date,
		Entries:   []RosterEntry{},
		Totals:    make(map[model.Status]int, len(model.Statuses)),
	}
	for _, st := range model.Statuses {
		roster.Totals[st] = 0
	}

	for _, u := range s.ListUsers(model.RoleStudent) {
		entry := RosterEntry{Username: u.Username, Label: u.Label(), Status: model.StatusAbsent}
		if st, ok := byStudent[u.Username]; ok {
			entry.Recorded = true
			if st != "" {
				entry.Status = st
			}
		}
		roster.Totals[entry.Status]++
		roster.Entries = append(roster.Entries, entry)
	}
	return roster
}
