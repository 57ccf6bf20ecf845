// Package output 命令输出格式化
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Format 输出格式
type Format string

const (
	// FormatTable 表格（默认，面向人）
	FormatTable Format = "table"
	// FormatJSON 单行 JSON（面向脚本）
	FormatJSON Format = "json"
)

// ParseFormat 解析格式名
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("未知输出格式 %q（可选 table|json）", s)
	}
}

// Formatter 输出格式化器
//
// 数据写入 writer；提示信息写入 logWriter，避免污染 JSON 输出。
type Formatter struct {
	format    Format
	writer    io.Writer
	logWriter io.Writer
}

// NewFormatter 创建格式化器
func NewFormatter(format Format, writer, logWriter io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	if logWriter == nil {
		logWriter = os.Stderr
	}
	return &Formatter{format: format, writer: writer, logWriter: logWriter}
}

// Format 当前格式
func (f *Formatter) Format() Format {
	return f.format
}

// Table 以表格输出；JSON 模式下输出 raw
func (f *Formatter) Table(header []string, rows [][]string, raw interface{}) error {
	if f.format == FormatJSON {
		return f.JSON(raw)
	}
	if len(rows) == 0 {
		f.Info("（无记录）")
		return nil
	}
	data := append(pterm.TableData{header}, rows...)
	return pterm.DefaultTable.
		WithHasHeader().
		WithHeaderRowSeparator("-").
		WithData(data).
		WithWriter(f.writer).
		Render()
}

// KeyValues 以两列表格输出；JSON 模式下输出 raw
func (f *Formatter) KeyValues(pairs [][2]string, raw interface{}) error {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return f.Table([]string{"字段", "值"}, rows, raw)
}

// JSON 单行 JSON
func (f *Formatter) JSON(v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(f.writer, string(out))
	return err
}

// Info 提示信息
func (f *Formatter) Info(format string, args ...interface{}) {
	pterm.Info.WithWriter(f.logWriter).Printfln(format, args...)
}

// Success 成功信息
func (f *Formatter) Success(format string, args ...interface{}) {
	pterm.Success.WithWriter(f.logWriter).Printfln(format, args...)
}

// Warning 警告信息
func (f *Formatter) Warning(format string, args ...interface{}) {
	pterm.Warning.WithWriter(f.logWriter).Printfln(format, args...)
}
