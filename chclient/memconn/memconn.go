// Package memconn 提供一个进程内的 Conn 实现，用于测试和本地开发。
// 错误以 JSON 负载的形式回传，走与真实协作方相同的翻译通路。
package memconn

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chblock"
	"github.com/hatlonely/chx/cherr"
)

// 与服务端约定一致的错误码
const (
	codeUnknownTable              = 60
	codeSizesOfColumnsDoesntMatch = 190
)

type MemConn struct {
	mutex  sync.Mutex
	tables map[string][]*chblock.Block
	closed bool
}

func NewMemConn() *MemConn {
	return &MemConn{tables: map[string][]*chblock.Block{}}
}

// Insert 写入一个块。表不存在时建表，已存在时追加一个块。
// 行数不一致的块在这里被拒绝，对应真实服务端的行为。
func (c *MemConn) Insert(ctx context.Context, table string, block *chblock.Block) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return closedError()
	}

	if err := block.CheckRowCounts(); err != nil {
		return serverError(codeSizesOfColumnsDoesntMatch, "SIZES_OF_COLUMNS_DOESNT_MATCH", err.Error())
	}

	c.tables[table] = append(c.tables[table], block)
	return nil
}

// Select 查询语句就是表名，该表的块按插入顺序逐个回调
func (c *MemConn) Select(ctx context.Context, query string, fn func(block *chblock.Block) error) error {
	c.mutex.Lock()
	blocks, ok := c.tables[query]
	closed := c.closed
	c.mutex.Unlock()

	if closed {
		return closedError()
	}
	if !ok {
		return serverError(codeUnknownTable, "UNKNOWN_TABLE", "table "+query+" does not exist")
	}

	for _, block := range blocks {
		if err := fn(block); err != nil {
			return err
		}
	}
	return nil
}

// Execute 目前只支持删表：语句就是表名，存在则删除
func (c *MemConn) Execute(ctx context.Context, query string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return closedError()
	}
	delete(c.tables, query)
	return nil
}

func (c *MemConn) Ping(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return closedError()
	}
	return nil
}

func (c *MemConn) ResetConnection(ctx context.Context) error {
	return nil
}

func (c *MemConn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.closed = true
	return nil
}

func serverError(code int, name string, message string) error {
	return errors.New(cherr.EncodePayload(&cherr.Error{
		Kind:    cherr.KindServer,
		Message: message,
		Code:    code,
		Name:    name,
	}))
}

func closedError() error {
	return errors.New(cherr.EncodePayload(&cherr.Error{
		Kind:    cherr.KindConnection,
		Message: "connection is closed",
	}))
}
