package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/weisyn/casnode/internal/api/http"
	"github.com/weisyn/casnode/internal/cli/client"
	apiconfig "github.com/weisyn/casnode/internal/config/api"
	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/content"
	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/internal/core/p2p/discovery"
	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/pkg/types"
)

const helloWorldID = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func startNodeAPI(t *testing.T) string {
	t.Helper()
	opts := storageconfig.New(&types.UserStorageConfig{RootPath: types.StringPtr("/data")}).GetOptions()
	store, err := cas.New(afero.NewMemMapFs(), opts, nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	id, err := identity.Generate(nil)
	require.NoError(t, err)

	n := node.New(node.Node{
		Identity: id,
		Store:    store,
		Peers:    discovery.NewPeerTable(time.Minute, nil),
		Content:  content.New(store, nil, nil),
	})
	cfg := apiconfig.New(nil).GetOptions().HTTP
	srv := httptest.NewServer(httpapi.NewServer(cfg, n, opts.MaxObjectSize, nil, nil).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// run 执行一次命令，返回标准输出与错误
func run(t *testing.T, api string, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	cmd.SetArgs(append([]string{"--api", api}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestPut_WithFile_PrintsContentID 测试上传命令
func TestPut_WithFile_PrintsContentID(t *testing.T) {
	// Arrange
	api := startNodeAPI(t)
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	// Act
	out, err := run(t, api, "", "--output", "json", "put", path)

	// Assert
	require.NoError(t, err)
	var res struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, helloWorldID, res.ID)
	assert.Equal(t, "hello.txt", res.Filename)
}

// TestPutGet_WithStdinAndOutFile_RoundTrips 测试标准输入上传与落盘下载
func TestPutGet_WithStdinAndOutFile_RoundTrips(t *testing.T) {
	api := startNodeAPI(t)
	_, err := run(t, api, "hello world", "put", "-")
	require.NoError(t, err)
	dest := filepath.Join(t.TempDir(), "copy.txt")

	_, err = run(t, api, "", "get", helloWorldID, "-o", dest)
	require.NoError(t, err)
	stdout, err := run(t, api, "", "get", helloWorldID)
	require.NoError(t, err)

	data, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, "hello world", stdout)
	_, statErr := os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(statErr), "临时文件应被改名")
}

// TestGet_WithMissingContent_ReturnsNotFound 测试下载缺失内容
func TestGet_WithMissingContent_ReturnsNotFound(t *testing.T) {
	api := startNodeAPI(t)
	dest := filepath.Join(t.TempDir(), "missing.bin")

	_, err := run(t, api, "", "get", types.Identify([]byte("absent")).String(), "-o", dest)

	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNotFound))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "失败时不应留下输出文件")
}

// TestGet_WithMalformedID_ReturnsError 测试非法标识符在本地即被拒绝
func TestGet_WithMalformedID_ReturnsError(t *testing.T) {
	_, err := run(t, "127.0.0.1:1", "", "get", "xyz")

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidContentID))
}

// TestFiles_WithStoredObjects_RendersTable 测试列表命令
func TestFiles_WithStoredObjects_RendersTable(t *testing.T) {
	api := startNodeAPI(t)
	_, err := run(t, api, "hello world", "put", "-")
	require.NoError(t, err)

	out, err := run(t, api, "", "files")

	require.NoError(t, err)
	assert.Contains(t, out, helloWorldID)
	assert.Contains(t, out, "SIZE")
}

// TestInfoAndPeers_WithJSONOutput_EmitsJSON 测试节点查询命令
func TestInfoAndPeers_WithJSONOutput_EmitsJSON(t *testing.T) {
	api := startNodeAPI(t)

	info, err := run(t, api, "", "--output", "json", "info")
	require.NoError(t, err)
	peers, err := run(t, api, "", "--output", "json", "peers")
	require.NoError(t, err)

	assert.Contains(t, info, `"storage_root":"/data"`)
	assert.JSONEq(t, `[]`, peers)
}

// TestRoot_WithUnknownOutputFormat_ReturnsError 测试参数校验
func TestRoot_WithUnknownOutputFormat_ReturnsError(t *testing.T) {
	_, err := run(t, "127.0.0.1:1", "", "--output", "yaml", "files")

	assert.Error(t, err)
}
