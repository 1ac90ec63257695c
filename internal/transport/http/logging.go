package http

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/traveltales/api/internal/domain"
)

const (
	requestBodyLogKey = "http.request.body.summary"
	maxLoggedBody     = 2048
)

var redactedBodyKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"x-auth-token":  {},
	"password_hash": {},
}

func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := c.Get(contextUserKey).(*domain.User); ok && user != nil {
				userID = user.ID.String()
			}

			payload := struct {
				Time      string `json:"time"`
				UserUUID  string `json:"user_uuid"`
				LatencyMS int64  `json:"latency_ms"`
				Request   struct {
					Method string `json:"method"`
					URI    string `json:"uri"`
					Body   any    `json:"body,omitempty"`
				} `json:"request"`
				Response struct {
					Status int    `json:"status"`
					Error  string `json:"error,omitempty"`
				} `json:"response"`
			}{
				Time:      v.StartTime.Format(time.RFC3339),
				UserUUID:  userID,
				LatencyMS: v.Latency.Milliseconds(),
			}

			payload.Request.Method = v.Method
			payload.Request.URI = v.URI
			if summary := c.Get(requestBodyLogKey); summary != nil {
				payload.Request.Body = summary
			}
			payload.Response.Status = v.Status
			if v.Error != nil {
				payload.Response.Error = v.Error.Error()
			}

			buf, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, _ []byte) {
		if summary := summarizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
	}))
}

// summarizeBody keeps a redacted, size-bounded rendering of JSON request
// bodies for the request log. Multipart and other payloads log only their
// size.
func summarizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}

	lowered := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(lowered, "application/json") && !json.Valid(body) {
		return map[string]any{"bytes": len(body)}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return map[string]any{"bytes": len(body)}
	}
	redacted := redactJSON(data)

	if encoded, err := json.Marshal(redacted); err == nil && len(encoded) > maxLoggedBody {
		return map[string]any{"bytes": len(body), "truncated": true}
	}
	return redacted
}

func redactJSON(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if _, sensitive := redactedBodyKeys[strings.ToLower(key)]; sensitive {
				out[key] = "[redacted]"
				continue
			}
			out[key] = redactJSON(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = redactJSON(inner)
		}
		return out
	default:
		return value
	}
}
