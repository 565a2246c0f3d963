// Package csvtable 提供以表头行开头的 CSV 文件表：惰性初始化、整表读取、追加单行、
// 按条件删除/更新（整表重写）。不做唯一性约束，也不做跨进程加锁。
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// Row 一行数据：列名 → 值
type Row map[string]string

// Table 单个 CSV 表
type Table struct {
	path   string
	header []string
	seed   []Row
}

// New 创建 Table
// header 为文件不存在时写入的表头，seed 为同时写入的初始行
func New(path string, header []string, seed ...Row) *Table {
	return &Table{path: path, header: header, seed: seed}
}

// Path 返回表文件路径
func (t *Table) Path() string { return t.path }

// Init 惰性初始化：文件不存在或为空（写入中断）时创建目录并写入表头与初始行
func (t *Table) Init() error {
	info, err := os.Stat(t.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageErr("检查", t.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return storageErr("创建目录", filepath.Dir(t.path), err)
	}
	return t.rewrite(t.header, t.seed)
}

// Header 返回文件中实际的表头
func (t *Table) Header() ([]string, error) {
	header, _, err := t.read()
	return header, err
}

// LoadAll 按文件顺序读取全部数据行
func (t *Table) LoadAll() ([]Row, error) {
	_, rows, err := t.read()
	return rows, err
}

// Load 一次读取表头与全部数据行
func (t *Table) Load() ([]string, []Row, error) {
	return t.read()
}

// Append 追加一行；按文件表头的列顺序写入，表头之外的字段被忽略
func (t *Table) Append(row Row) error {
	header, err := t.Header()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return storageErr("打开", t.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(project(header, row)); err != nil {
		return storageErr("写入", t.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storageErr("写入", t.path, err)
	}
	if err := f.Close(); err != nil {
		return storageErr("关闭", t.path, err)
	}
	return nil
}

// DeleteWhere 删除所有匹配行；仅当至少一行匹配时整表重写
func (t *Table) DeleteWhere(match func(Row) bool) (bool, error) {
	header, rows, err := t.read()
	if err != nil {
		return false, err
	}

	kept := rows[:0:0]
	deleted := false
	for _, r := range rows {
		if match(r) {
			deleted = true
			continue
		}
		kept = append(kept, r)
	}
	if !deleted {
		return false, nil
	}
	if err := t.rewrite(header, kept); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateWhere 对每个匹配行执行 mutate；仅当至少一行匹配时整表重写
// mutate 写入表头中不存在的列时，该列追加到表头末尾
func (t *Table) UpdateWhere(match func(Row) bool, mutate func(Row)) (bool, error) {
	header, rows, err := t.read()
	if err != nil {
		return false, err
	}

	changed := false
	for _, r := range rows {
		if match(r) {
			mutate(r)
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	if err := t.rewrite(extendHeader(header, rows), rows); err != nil {
		return false, err
	}
	return true, nil
}

// ── 内部实现 ──

func (t *Table) read() ([]string, []Row, error) {
	if err := t.Init(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, nil, storageErr("打开", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// 空文件视为只有默认表头
		return append([]string(nil), t.header...), nil, nil
	}
	if err != nil {
		return nil, nil, parseErr(t.path, err)
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, parseErr(t.path, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// rewrite 先写临时文件再原子替换：要么全部保留行写入成功，要么原文件保持不变
func (t *Table) rewrite(header []string, rows []Row) error {
	dir := filepath.Dir(t.path)
	tmp := filepath.Join(dir, "."+filepath.Base(t.path)+".tmp-"+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return storageErr("创建临时文件", tmp, err)
	}

	w := csv.NewWriter(f)
	werr := w.Write(header)
	for _, r := range rows {
		if werr != nil {
			break
		}
		werr = w.Write(project(header, r))
	}
	if werr == nil {
		w.Flush()
		werr = w.Error()
	}
	if werr == nil {
		werr = f.Sync()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmp)
		return storageErr("写入", tmp, werr)
	}

	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		return storageErr("替换", t.path, err)
	}
	return nil
}

func project(header []string, row Row) []string {
	rec := make([]string, len(header))
	for i, col := range header {
		rec[i] = row[col]
	}
	return rec
}

func extendHeader(header []string, rows []Row) []string {
	known := make(map[string]bool, len(header))
	for _, h := range header {
		known[h] = true
	}
	var extra []string
	for _, r := range rows {
		for k := range r {
			if !known[k] {
				known[k] = true
				extra = append(extra, k)
			}
		}
	}
	if len(extra) == 0 {
		return header
	}
	sort.Strings(extra)
	return append(append([]string(nil), header...), extra...)
}

func storageErr(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s 失败: %w", pkgerrors.ErrStorageUnavailable, op, path, err)
}

func parseErr(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", pkgerrors.ErrParse, path, err)
}
