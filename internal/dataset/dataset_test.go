package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Run("加载合法数据集成功", func(t *testing.T) {
		data, err := Load(filepath.Join("testdata", "valid.json"))

		require.NoError(t, err)
		assert.Len(t, data.Users, 2)
		assert.Len(t, data.Emails, 3)
		assert.Len(t, data.Prompts, 2)

		// 凭证被加载但不会出现在序列化结果中
		assert.Equal(t, "password123", data.Users[0].Password)
		assert.Equal(t, "alice@example.com", data.Users[0].Email)

		assert.Equal(t, "user-1", data.Emails[0].UserID)
		assert.True(t, data.Emails[1].IsRead)
		assert.Equal(t, domain.PurposeCategorization, data.Prompts[0].Purpose)
	})

	t.Run("文件不存在返回错误", func(t *testing.T) {
		_, err := Load(filepath.Join("testdata", "missing.json"))
		assert.Error(t, err)
	})

	t.Run("非法JSON返回错误", func(t *testing.T) {
		path := writeTemp(t, `{"users": [`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("重复用户ID被拒绝", func(t *testing.T) {
		path := writeTemp(t, `{
			"users": [
				{"id": "u1", "email": "a@x.com", "name": "A", "password": "p"},
				{"id": "u1", "email": "b@x.com", "name": "B", "password": "p"}
			]
		}`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "duplicate user id")
	})

	t.Run("邮件归属未知用户被拒绝", func(t *testing.T) {
		path := writeTemp(t, `{
			"users": [{"id": "u1", "email": "a@x.com", "name": "A", "password": "p"}],
			"emails": [{"id": "e1", "user_id": "ghost", "sender": "S", "sender_email": "s@x.com",
				"subject": "hi", "body": "b", "received_at": "2025-01-01T00:00:00Z"}]
		}`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "unknown user")
	})

	t.Run("重复的用户用途组合被拒绝", func(t *testing.T) {
		path := writeTemp(t, `{
			"users": [{"id": "u1", "email": "a@x.com", "name": "A", "password": "p"}],
			"prompts": [
				{"id": "p1", "user_id": "u1", "prompt_type": "auto_reply", "name": "r1", "content": "c1"},
				{"id": "p2", "user_id": "u1", "prompt_type": "auto_reply", "name": "r2", "content": "c2"}
			]
		}`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "duplicate prompt purpose")
	})

	t.Run("未知提示词用途被拒绝", func(t *testing.T) {
		path := writeTemp(t, `{
			"users": [{"id": "u1", "email": "a@x.com", "name": "A", "password": "p"}],
			"prompts": [{"id": "p1", "user_id": "u1", "prompt_type": "summarize", "name": "s", "content": "c"}]
		}`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "unknown purpose")
	})
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
