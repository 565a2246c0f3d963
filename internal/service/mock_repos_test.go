package service

import (
	"context"
	"errors"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/internal/repository"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
	"github.com/byliew07/CheckMeIN/pkg/redis"
)

var errMockStorage = errors.Join(pkgerrors.ErrStorageUnavailable, errors.New("mock: 磁盘不可用"))

// ── Mock UserRepository ──

type mockUserRepo struct {
	users    []model.User
	failList bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: []model.User{{Username: "admin", Password: "admin123", Role: model.RoleAdmin}}}
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	if m.failList {
		return nil, errMockStorage
	}
	return append([]model.User(nil), m.users...), nil
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, username string) (bool, error) {
	for i, u := range m.users {
		if u.Username == username {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, username, displayName string) (bool, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			name := displayName
			m.users[i].DisplayName = &name
			return true, nil
		}
	}
	return false, nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes []model.Class
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{}
}

func (m *mockClassRepo) List(_ context.Context) ([]model.Class, error) {
	return append([]model.Class(nil), m.classes...), nil
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	m.classes = append(m.classes, *class)
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, className string) (bool, error) {
	for i, c := range m.classes {
		if c.ClassName == className {
			m.classes = append(m.classes[:i], m.classes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records    []model.AttendanceRecord
	failCreate bool
	creates    int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) List(_ context.Context) ([]model.AttendanceRecord, error) {
	return append([]model.AttendanceRecord(nil), m.records...), nil
}

// Create 与 CSV 存储一致：不做唯一性检查
func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	if m.failCreate {
		return errMockStorage
	}
	m.creates++
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, key model.RecordKey, status model.Status) (bool, error) {
	changed := false
	for i := range m.records {
		if m.records[i].Key() == key {
			m.records[i].Status = status
			changed = true
		}
	}
	return changed, nil
}

// count 某自然主键的记录数
func (m *mockAttendanceRepo) count(key model.RecordKey) int {
	n := 0
	for _, r := range m.records {
		if r.Key() == key {
			n++
		}
	}
	return n
}

// ── Mock Locker ──

type mockLocker struct {
	busy     bool
	acquired []string
	released int
}

func (l *mockLocker) Acquire(_ context.Context, key string) (func(), error) {
	if l.busy {
		return nil, redis.ErrLockBusy
	}
	l.acquired = append(l.acquired, key)
	return func() { l.released++ }, nil
}

// ── 聚合 ──

type mockRepos struct {
	users      *mockUserRepo
	classes    *mockClassRepo
	attendance *mockAttendanceRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:      newMockUserRepo(),
		classes:    newMockClassRepo(),
		attendance: newMockAttendanceRepo(),
	}
	return &repository.Repository{
		User:       m.users,
		Class:      m.classes,
		Attendance: m.attendance,
	}, m
}
