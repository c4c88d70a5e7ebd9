package chclient

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hatlonely/chx/chblock"
	"github.com/hatlonely/chx/chconv"
	"github.com/hatlonely/chx/cherr"
)

// Conn 底层连接。查询结果可能分多个块到达，逐块回调。
// 实现方返回的错误会被统一翻译成 *cherr.Error。
type Conn interface {
	Insert(ctx context.Context, table string, block *chblock.Block) error
	Select(ctx context.Context, query string, fn func(block *chblock.Block) error) error
	Execute(ctx context.Context, query string) error
	Ping(ctx context.Context) error
	ResetConnection(ctx context.Context) error
	Close() error
}

type Options struct {
	// MaxResultRows 查询结果的最大总行数，0 表示不限制
	MaxResultRows int `validate:"gte=0"`
	// PrecheckRowCounts 插入前在本地校验各列行数一致，提前拦下必然被服务端拒绝的块
	PrecheckRowCounts bool
	Logger            *slog.Logger
}

// Client 列式数据通路的门面：组装、校验、收发、错误翻译都在这一层收口
type Client struct {
	conn      Conn
	builder   *chconv.Builder
	extractor *chconv.Extractor
	options   *Options
	logger    *slog.Logger
}

func NewClientWithOptions(conn Conn, options *Options) (*Client, error) {
	if conn == nil {
		return nil, errors.New("conn cannot be nil")
	}
	if options == nil {
		options = &Options{}
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.WithMessage(err, "validator.Struct failed")
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := chconv.NewRegistry()
	return &Client{
		conn:      conn,
		builder:   chconv.NewBuilder(registry),
		extractor: chconv.NewExtractor(registry),
		options:   options,
		logger:    logger,
	}, nil
}

// Insert 按表结构组装载荷并写入。
// 组装失败在本地报错，不会产生任何网络流量。
func (c *Client) Insert(ctx context.Context, table string, schema []chblock.ColumnSchema, payload map[string]any) error {
	block, err := chblock.Assemble(schema, payload, c.builder)
	if err != nil {
		return err
	}
	return c.InsertBlock(ctx, table, block)
}

// InsertBlock 写入已组装好的块
func (c *Client) InsertBlock(ctx context.Context, table string, block *chblock.Block) error {
	if c.options.PrecheckRowCounts {
		if err := block.CheckRowCounts(); err != nil {
			return err
		}
	}
	c.logger.Debug("insert block", "table", table, "rows", block.RowCount(), "columns", block.ColumnCount())
	return cherr.Translate(c.conn.Insert(ctx, table, block))
}

// Select 查询并按行解码，多个结果块按到达顺序拼接
func (c *Client) Select(ctx context.Context, query string) ([]map[string]any, error) {
	rows := []map[string]any{}
	err := c.conn.Select(ctx, query, func(block *chblock.Block) error {
		if err := c.checkResultRows(len(rows), block); err != nil {
			return err
		}
		decoded, err := block.Rows(c.extractor)
		if err != nil {
			return err
		}
		rows = append(rows, decoded...)
		return nil
	})
	if err != nil {
		return nil, cherr.Translate(err)
	}
	c.logger.Debug("select rows", "query", query, "rows", len(rows))
	return rows, nil
}

// SelectColumns 查询并按列解码，多个结果块逐列拼接
func (c *Client) SelectColumns(ctx context.Context, query string) (map[string][]any, error) {
	out := map[string][]any{}
	total := 0
	err := c.conn.Select(ctx, query, func(block *chblock.Block) error {
		if err := c.checkResultRows(total, block); err != nil {
			return err
		}
		columns, err := block.Columns(c.extractor)
		if err != nil {
			return err
		}
		for name, values := range columns {
			out[name] = append(out[name], values...)
		}
		total += block.RowCount()
		return nil
	})
	if err != nil {
		return nil, cherr.Translate(err)
	}
	return out, nil
}

func (c *Client) checkResultRows(have int, block *chblock.Block) error {
	if c.options.MaxResultRows > 0 && have+block.RowCount() > c.options.MaxResultRows {
		return cherr.New(cherr.KindValidation,
			"result exceeds row limit %d", c.options.MaxResultRows)
	}
	return nil
}

// Execute 执行不返回数据的语句
func (c *Client) Execute(ctx context.Context, query string) error {
	return cherr.Translate(c.conn.Execute(ctx, query))
}

// Ping 探活
func (c *Client) Ping(ctx context.Context) error {
	return cherr.Translate(c.conn.Ping(ctx))
}

// ResetConnection 丢弃连接上的残留状态
func (c *Client) ResetConnection(ctx context.Context) error {
	return cherr.Translate(c.conn.ResetConnection(ctx))
}

func (c *Client) Close() error {
	return cherr.Translate(c.conn.Close())
}
