package repository

import (
	"context"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/csvtable"
)

// csvClassRepo ClassRepository 的 CSV 实现
type csvClassRepo struct {
	table *csvtable.Table
}

// NewCSVClassRepo 创建 ClassRepository 实例
func NewCSVClassRepo(path string) ClassRepository {
	return &csvClassRepo{table: csvtable.New(path, classHeader)}
}

func (r *csvClassRepo) List(_ context.Context) ([]model.Class, error) {
	header, rows, err := r.table.Load()
	if err != nil {
		return nil, err
	}
	// lecturer_username 列可缺省
	if err := requireColumns(r.table.Path(), header, "class_name"); err != nil {
		return nil, err
	}
	classes := make([]model.Class, 0, len(rows))
	for i, row := range rows {
		c, err := decodeClass(r.table.Path(), i, row)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func (r *csvClassRepo) Create(_ context.Context, class *model.Class) error {
	return r.table.Append(encodeClass(class))
}

func (r *csvClassRepo) Delete(_ context.Context, className string) (bool, error) {
	return r.table.DeleteWhere(func(row csvtable.Row) bool {
		return row["class_name"] == className
	})
}
