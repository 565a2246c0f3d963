package repository

import (
	"context"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/csvtable"
)

// csvUserRepo UserRepository 的 CSV 实现
type csvUserRepo struct {
	table *csvtable.Table
}

// NewCSVUserRepo 创建 UserRepository 实例；文件不存在时写入表头与内置管理员
func NewCSVUserRepo(path string) UserRepository {
	return &csvUserRepo{table: csvtable.New(path, userHeader, seedAdmin)}
}

func (r *csvUserRepo) List(_ context.Context) ([]model.User, error) {
	header, rows, err := r.table.Load()
	if err != nil {
		return nil, err
	}
	if err := requireColumns(r.table.Path(), header, userHeader...); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(rows))
	for i, row := range rows {
		u, err := decodeUser(r.table.Path(), i, row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *csvUserRepo) Create(_ context.Context, user *model.User) error {
	return r.table.Append(encodeUser(user))
}

func (r *csvUserRepo) Delete(_ context.Context, username string) (bool, error) {
	return r.table.DeleteWhere(func(row csvtable.Row) bool {
		return row["username"] == username
	})
}

func (r *csvUserRepo) UpdateDisplayName(_ context.Context, username, displayName string) (bool, error) {
	return r.table.UpdateWhere(
		func(row csvtable.Row) bool { return row["username"] == username },
		func(row csvtable.Row) { row[colDisplayName] = displayName },
	)
}
