package model

import (
	"encoding/json"
	"time"
)

// ActivityLayout — формат отображения меток активности.
const ActivityLayout = "2006-01-02 15:04:05"

// Раскладки, в которых источники присылают ISO-8601.
var activityLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999-0700",
	"2006-01-02T15:04:05-0700",
}

// LastActive — метка последней активности. Отсутствующее значение означает
// «активность не наблюдалась», а не «неизвестно»; нечитаемое значение
// сохраняется как сырая строка с признаком ошибки разбора.
type LastActive struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// ParseLastActive разбирает метку активности из ISO-8601, сохраняя исходную
// строку при любой ошибке разбора.
func ParseLastActive(raw string) LastActive {
	if raw == "" {
		return LastActive{}
	}
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return LastActive{Raw: raw, Time: t, Valid: true}
		}
	}
	return LastActive{Raw: raw}
}

// IsZero сообщает, что активность не наблюдалась.
func (l LastActive) IsZero() bool {
	return l.Raw == ""
}

// Format возвращает метку в виде «2006-01-02 15:04:05»; для нечитаемого
// значения — сырую строку, для отсутствующего — пустую.
func (l LastActive) Format() string {
	if l.Valid {
		return l.Time.Format(ActivityLayout)
	}
	return l.Raw
}

// MarshalJSON сериализует метку как строку отображения либо null.
func (l LastActive) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(l.Format())
}
