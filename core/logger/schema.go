package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// knownOutcome lists the outcome values kept in records; others are dropped.
var knownOutcome = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"cancelled":    {},
	"rate_limited": {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

func normalizeEnums(fields map[string]any) {
	if s, ok := fields["status"].(string); ok && s != "" {
		fields["status"] = strings.ToLower(strings.TrimSpace(s))
	}
	if o, ok := fields["outcome"].(string); ok && o != "" {
		o = strings.ToLower(strings.TrimSpace(o))
		if _, known := knownOutcome[o]; known {
			fields["outcome"] = o
		} else {
			delete(fields, "outcome")
		}
	}
}

// defaultKeyOrder puts identity and correlation first, then the store
// specific fields, then errors. Keys not listed follow alphabetically.
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
	"kind",
	"source",
	"command",
	"token",
	"screen",
	"render",
	"item_id",
	"items",
	"admin_id",
	"admins",
	"outcome",
	"duration_ms",
	"messages",
	"edits",
	"kb",
	"webapp",
	"mode",
	"url",
	"db",
	"host",
	"port",
	"action",
	"endpoint",
	"attempt",
	"incident_id",
	"err",
	"err_code",
	"err_kind",
	"cause",
}
