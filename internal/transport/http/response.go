package httptransport

import "github.com/gin-gonic/gin"

// Detail 写出统一形状的错误响应体 {"detail": <消息>}。
// 所有非 2xx 响应都使用这一形状，前端据此展示错误信息。
func Detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// Message 写出形如 {"message": <消息>} 的操作确认响应体。
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
