package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/casnode/internal/config/log"
	"github.com/weisyn/casnode/pkg/types"
)

// readJSONLines 读取日志文件中的 JSON 行
func readJSONLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "文件日志应为 JSON")
		entries = append(entries, entry)
	}
	return entries
}

// TestNew_WithFilePath_WritesJSONToFile 测试文件输出为结构化 JSON
func TestNew_WithFilePath_WritesJSONToFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "logs", "node.log")
	cfg := logconfig.New(&types.UserLogConfig{
		Level:     types.StringPtr("debug"),
		FilePath:  types.StringPtr(path),
		ToConsole: types.BoolPtr(false),
	})

	// Act
	logger, err := New(cfg)
	require.NoError(t, err)
	logger.With("module", "cas", "size", 42).Info("对象已写入")
	logger.Debugf("调试 %d", 7)
	require.NoError(t, logger.Sync())

	// Assert
	entries := readJSONLines(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "对象已写入", entries[0]["message"])
	assert.Equal(t, "cas", entries[0]["module"])
	assert.Equal(t, float64(42), entries[0]["size"])
	assert.Equal(t, "调试 7", entries[1]["message"])
}

// TestNew_WithWarnLevel_FiltersLowerLevels 测试级别过滤
func TestNew_WithWarnLevel_FiltersLowerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	cfg := logconfig.New(&types.UserLogConfig{
		Level:     types.StringPtr("warn"),
		FilePath:  types.StringPtr(path),
		ToConsole: types.BoolPtr(false),
	})

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("不应出现")
	logger.Warn("应当出现")
	require.NoError(t, logger.Sync())

	entries := readJSONLines(t, path)
	require.Len(t, entries, 1, "info 级别应被过滤")
	assert.Equal(t, "应当出现", entries[0]["message"])
}

// TestWith_WithOddArgs_DropsDanglingKey 测试奇数参数
func TestWith_WithOddArgs_DropsDanglingKey(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	logger.With("peer", "abc", "dangling").Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["peer"])
	assert.NotContains(t, fields, "dangling")
}

// TestSetLogger_WithNil_KeepsPrevious 测试全局日志器替换
func TestSetLogger_WithNil_KeepsPrevious(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(NewFromZap(zap.New(core)))
	SetLogger(nil)

	OrGlobal(nil).Info("via global")
	assert.Equal(t, 1, logs.FilterMessage("via global").Len(), "nil 不应覆盖全局日志器")
}

// TestNewModuleLogger_AddsModuleField 测试模块日志器字段
func TestNewModuleLogger_AddsModuleField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := NewFromZap(zap.New(core))

	NewModuleLogger(base, "discovery").Info("started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "discovery", logs.All()[0].ContextMap()["module"])
}
