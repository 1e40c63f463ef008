package models

import "time"

// FlowState is the per-user conversation state: which step of a multi-step
// dialog the user is in plus whatever the dialog collected so far. Stored
// in Redis (JSON) with an in-memory fallback, so Data round-trips through
// generic JSON types and readers go through the typed getters below.
type FlowState struct {
	ChatID int64                  `json:"chat_id"`
	Step   string                 `json:"step"`
	Data   map[string]interface{} `json:"data"`
}

func (s *FlowState) GetString(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	if v, ok := s.Data[key].(string); ok {
		return v
	}
	return ""
}

func (s *FlowState) GetInt(key string) int {
	if s == nil || s.Data == nil {
		return 0
	}
	switch v := s.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (s *FlowState) GetFloat(key string) float64 {
	if s == nil || s.Data == nil {
		return 0
	}
	switch v := s.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (s *FlowState) GetBool(key string) bool {
	if s == nil || s.Data == nil {
		return false
	}
	if v, ok := s.Data[key].(bool); ok {
		return v
	}
	return false
}

func (s *FlowState) GetTime(key string) time.Time {
	if s == nil || s.Data == nil {
		return time.Time{}
	}
	switch v := s.Data[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// GetStrings reads an ordered string list, tolerating the []interface{}
// shape JSON decoding produces.
func (s *FlowState) GetStrings(key string) []string {
	if s == nil || s.Data == nil {
		return nil
	}
	switch v := s.Data[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
