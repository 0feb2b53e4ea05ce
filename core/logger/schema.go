package logger

import "strings"

// normalizeLevel maps slog level names (including offsets such as "INFO+2") to the
// four names used in output.
func normalizeLevel(level string) string {
	name, _, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(level)), "+")
	name, _, _ = strings.Cut(name, "-")
	switch name {
	case "DEBUG", "INFO", "ERROR":
		return name
	case "WARN", "WARNING":
		return "WARN"
	case "":
		return "INFO"
	}
	return name
}

// normalizeStatus lowercases status and folds common synonyms.
func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "success", "done":
		return "ok"
	case "error", "failed":
		return "fail"
	case "skipped", "ignored":
		return "skip"
	case "canceled":
		return "cancelled"
	}
	return status
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"cb_key",
	"duration_ms",
	"messages",
	"kb",
	"form_id",
	"step",
	"next",
	"film",
	"film_index",
	"count",
	"path",
	"mode",
	"listen",
	"public_url",
	"method",
	"attempt",
	"reason",
	"err",
	"err_code",
	"error_kind",
}
