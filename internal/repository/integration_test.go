//go:build integration

package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/internal/repository"
	"github.com/byliew07/CheckMeIN/pkg/database"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

// setupSQLiteRepo 在临时目录中创建数据库并执行迁移
func setupSQLiteRepo(t *testing.T) *repository.Repository {
	t.Helper()
	cfg := &config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "checkmein.db"),
	}
	db, err := database.Open(cfg, "warn", zap.NewNop())
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewGormRepository(db)
}

// ═══════════════════════════════════════════════════════════
// Users
// ═══════════════════════════════════════════════════════════

func TestSQLiteUserRepo_SeedAndCRUD(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	users, err := repo.User.List(ctx)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(users) != 1 || users[0].Username != "admin" {
		t.Fatalf("期望内置管理员，实际=%+v", users)
	}

	if err := repo.User.Create(ctx, &model.User{Username: "s1", Password: "pw", Role: model.RoleStudent}); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	err = repo.User.Create(ctx, &model.User{Username: "s1", Password: "pw", Role: model.RoleStudent})
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("重复用户名期望 ErrDuplicateKey，实际: %v", err)
	}

	ok, err := repo.User.UpdateDisplayName(ctx, "s1", "Alice")
	if err != nil || !ok {
		t.Fatalf("UpdateDisplayName 失败: ok=%v err=%v", ok, err)
	}

	ok, err = repo.User.Delete(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("Delete 失败: ok=%v err=%v", ok, err)
	}
	ok, _ = repo.User.Delete(ctx, "s1")
	if ok {
		t.Error("重复删除应返回 false")
	}
}

// ═══════════════════════════════════════════════════════════
// Attendance
// ═══════════════════════════════════════════════════════════

func TestSQLiteAttendanceRepo_PrimaryKeyRejectsDuplicate(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	rec := &model.AttendanceRecord{Date: "2024-01-01", ClassName: "C", StudentUsername: "S1", Status: model.StatusPresent, TimeIn: "09:00:00"}
	if err := repo.Attendance.Create(ctx, rec); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	dup := *rec
	if err := repo.Attendance.Create(ctx, &dup); !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("同一自然主键期望 ErrDuplicateKey，实际: %v", err)
	}

	ok, err := repo.Attendance.UpdateStatus(ctx, rec.Key(), model.StatusExcused)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus 失败: ok=%v err=%v", ok, err)
	}
	records, _ := repo.Attendance.List(ctx)
	if len(records) != 1 || records[0].Status != model.StatusExcused {
		t.Errorf("更新后记录不正确: %+v", records)
	}
}

func TestSQLiteClassRepo_CRUD(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	_ = repo.Class.Create(ctx, &model.Class{ClassName: "Math"})
	_ = repo.Class.Create(ctx, &model.Class{ClassName: "Art", LecturerUsername: "l1"})

	classes, err := repo.Class.List(ctx)
	if err != nil || len(classes) != 2 || classes[0].ClassName != "Math" {
		t.Fatalf("班级列表不正确: %+v err=%v", classes, err)
	}

	ok, _ := repo.Class.Delete(ctx, "Math")
	if !ok {
		t.Error("删除 Math 应成功")
	}
}
