package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// InitData проверяет подпись Telegram init-data перед проксированием к
// хранилищу. Данные ищутся в заголовке X-Telegram-Init-Data, затем в query
// параметре init_data. Пустой токен — ошибка конфигурации, а не пропуск
// проверки.
func InitData(token string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "init-data validation is not configured"})
			return
		}

		raw := c.GetHeader("X-Telegram-Init-Data")
		if raw == "" {
			raw = c.Query("init_data")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing init_data"})
			return
		}

		// expIn == 0 отключает проверку срока действия (контракт библиотеки)
		if err := initdata.Validate(raw, token, expIn); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init_data"})
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid init_data format"})
			return
		}
		if parsed.User.ID != 0 {
			c.Set("telegram_user_id", parsed.User.ID)
		}

		c.Next()
	}
}
