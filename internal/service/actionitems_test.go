package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
)

func TestParseActionItems(t *testing.T) {
	t.Run("纯JSON对象", func(t *testing.T) {
		items, err := ParseActionItems(`{"tasks":[{"task":"review deck","deadline":"Friday"},{"task":"reply"}]}`)

		require.NoError(t, err)
		assert.Equal(t, []domain.ActionItem{
			{Task: "review deck", Deadline: "Friday"},
			{Task: "reply"},
		}, items)
	})

	t.Run("JSON嵌在自由文本中", func(t *testing.T) {
		text := "Sure! Here are the action items:\n```json\n{\"tasks\":[{\"task\":\"book room\"}]}\n```\nLet me know."
		items, err := ParseActionItems(text)

		require.NoError(t, err)
		assert.Equal(t, []domain.ActionItem{{Task: "book room"}}, items)
	})

	t.Run("没有JSON对象退化为空列表", func(t *testing.T) {
		items, err := ParseActionItems("sorry, no JSON here")

		assert.Error(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("JSON损坏退化为空列表", func(t *testing.T) {
		items, err := ParseActionItems(`{"tasks":[{"task": }`)

		assert.Error(t, err)
		assert.Empty(t, items)
	})

	t.Run("缺少tasks字段退化为空列表", func(t *testing.T) {
		items, err := ParseActionItems(`{"items":["a","b"]}`)

		assert.Error(t, err)
		assert.Empty(t, items)
	})

	t.Run("tasks为空数组不算失败", func(t *testing.T) {
		items, err := ParseActionItems(`{"tasks":[]}`)

		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("取首个左花括号到末个右花括号", func(t *testing.T) {
		// 片段覆盖两个对象时整体不是合法 JSON，按约定退化为空列表
		items, err := ParseActionItems(`{"tasks":[{"task":"a"}]} trailing {"x":1}`)

		assert.Error(t, err)
		assert.Empty(t, items)
	})
}
