package writegate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wgif "github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
)

// TestAssertWriteAllowed_WhenReadOnly_ReturnsErrReadOnly 测试只读拦截
func TestAssertWriteAllowed_WhenReadOnly_ReturnsErrReadOnly(t *testing.T) {
	// Arrange
	gate := New()
	require.NoError(t, gate.AssertWriteAllowed("cas.put"), "初始应可写")

	// Act
	gate.EnterReadOnly("磁盘空间不足")
	err := gate.AssertWriteAllowed("cas.put")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, wgif.ErrReadOnly))
	assert.Contains(t, err.Error(), "磁盘空间不足")
	assert.True(t, gate.IsReadOnly())
	assert.Equal(t, "磁盘空间不足", gate.ReadOnlyReason())
}

// TestExitReadOnly_AfterEnter_AllowsWrites 测试恢复可写
func TestExitReadOnly_AfterEnter_AllowsWrites(t *testing.T) {
	gate := New()
	gate.EnterReadOnly("maintenance")

	gate.ExitReadOnly()

	assert.NoError(t, gate.AssertWriteAllowed("cas.put"))
	assert.False(t, gate.IsReadOnly())
	assert.Empty(t, gate.ReadOnlyReason())
}

// TestWriteGate_WithConcurrentAccess_IsRaceFree 测试并发访问
func TestWriteGate_WithConcurrentAccess_IsRaceFree(t *testing.T) {
	gate := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gate.EnterReadOnly("x")
			gate.ExitReadOnly()
		}()
		go func() {
			defer wg.Done()
			_ = gate.AssertWriteAllowed("cas.put")
			_ = gate.IsReadOnly()
		}()
	}
	wg.Wait()
}
