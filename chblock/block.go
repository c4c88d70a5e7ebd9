package chblock

import (
	"github.com/hatlonely/chx/chcol"
	"github.com/hatlonely/chx/chconv"
	"github.com/hatlonely/chx/cherr"
)

// Block 一批命名列，插入和查询的数据单元。
// 列顺序保持追加顺序，名字查找走索引。
type Block struct {
	names []string
	index map[string]int
	cols  []chcol.Column
}

func NewBlock() *Block {
	return &Block{index: map[string]int{}}
}

// AppendColumn 追加一列，列名不能为空也不能重复
func (b *Block) AppendColumn(name string, col chcol.Column) error {
	if name == "" {
		return cherr.New(cherr.KindValidation, "column name must not be empty")
	}
	if _, ok := b.index[name]; ok {
		return cherr.New(cherr.KindValidation, "duplicate column name %q", name)
	}
	b.index[name] = len(b.cols)
	b.names = append(b.names, name)
	b.cols = append(b.cols, col)
	return nil
}

// RowCount 第一列的行数，空块为 0。
// 各列行数一致与否由 CheckRowCounts 单独校验。
func (b *Block) RowCount() int {
	if len(b.cols) == 0 {
		return 0
	}
	return b.cols[0].Len()
}

func (b *Block) ColumnCount() int {
	return len(b.cols)
}

// Names 按追加顺序返回列名
func (b *Block) Names() []string {
	return b.names
}

// Column 按名字取列
func (b *Block) Column(name string) (chcol.Column, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.cols[i], true
}

// ColumnAt 按下标取列
func (b *Block) ColumnAt(i int) chcol.Column {
	return b.cols[i]
}

// Each 按追加顺序遍历所有列，fn 返回错误即中止
func (b *Block) Each(fn func(name string, col chcol.Column) error) error {
	for i, name := range b.names {
		if err := fn(name, b.cols[i]); err != nil {
			return err
		}
	}
	return nil
}

// CheckRowCounts 校验所有列行数一致。
// 组装阶段按列独立构建不强求等长，发送前由连接实现调用这里把关。
func (b *Block) CheckRowCounts() error {
	if len(b.cols) == 0 {
		return nil
	}
	want := b.cols[0].Len()
	for i, col := range b.cols {
		if col.Len() != want {
			return cherr.New(cherr.KindValidation,
				"column %q has %d rows, expect %d as column %q",
				b.names[i], col.Len(), want, b.names[0])
		}
	}
	return nil
}

// Rows 按行解码，每行是列名到值的映射
func (b *Block) Rows(e *chconv.Extractor) ([]map[string]any, error) {
	columns, err := b.Columns(e)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, b.RowCount())
	for i := range rows {
		row := make(map[string]any, len(b.names))
		for _, name := range b.names {
			row[name] = columns[name][i]
		}
		rows[i] = row
	}
	return rows, nil
}

// Columns 按列解码，每列是一条值序列
func (b *Block) Columns(e *chconv.Extractor) (map[string][]any, error) {
	if err := b.CheckRowCounts(); err != nil {
		return nil, err
	}

	out := make(map[string][]any, len(b.names))
	for i, name := range b.names {
		values, err := e.Extract(b.cols[i])
		if err != nil {
			return nil, err
		}
		out[name] = values
	}
	return out, nil
}
