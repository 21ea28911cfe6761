package logs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/umojalearning/umoja-backend/config"
)

// lokiWriter is an io.Writer that pushes each JSON log line to Loki's
// push API as a single-value stream.
type lokiWriter struct {
	endpoint string
	username string
	password string
	client   *http.Client
	stream   json.RawMessage
}

func newLokiHandler(cfg *config.Config, level slog.Level) slog.Handler {
	stream, _ := json.Marshal(map[string]string{
		"service": cfg.Observability.ServiceName,
		"env":     cfg.Server.Environment,
	})
	lw := &lokiWriter{
		endpoint: cfg.Logging.Output.Loki.Endpoint + "/loki/api/v1/push",
		username: cfg.Logging.Output.Loki.Username,
		password: cfg.Logging.Output.Loki.Password,
		client:   &http.Client{Timeout: 3 * time.Second},
		stream:   stream,
	}
	return slog.NewJSONHandler(lw, &slog.HandlerOptions{Level: level})
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream json.RawMessage `json:"stream"`
	Values [][2]string     `json:"values"`
}

func (lw *lokiWriter) Write(p []byte) (int, error) {
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)
	line := strings.TrimRight(string(p), "\n")

	body, err := json.Marshal(lokiPush{
		Streams: []lokiStream{{
			Stream: lw.stream,
			Values: [][2]string{{ts, line}},
		}},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, lw.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if lw.username != "" {
		req.SetBasicAuth(lw.username, lw.password)
	}

	resp, err := lw.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("loki push returned %s", resp.Status)
	}
	return len(p), nil
}
