package middleware

import (
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/trellis/pkg/appcontext"
	"github.com/Ramsey-B/trellis/pkg/metrics"
)

// Logger emits one structured line per request and records request metrics.
// Mount it after Context so the request id is already on the context.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			ctx := req.Context()
			requestID := appcontext.GetRequestID(ctx)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}

			metrics.RecordHTTPRequest(req.Method, c.Path(), res.Status, elapsed.Seconds())

			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"request_id":    requestID,
				"method":        req.Method,
				"uri":           req.RequestURI,
				"status":        res.Status,
				"route":         c.Path(),
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"user_agent":    req.UserAgent(),
				"response_time": elapsed,
				"request_size":  req.Header.Get(echo.HeaderContentLength),
				"response_size": strconv.FormatInt(res.Size, 10),
			}).Info("Request")

			return nil
		}
	}
}
