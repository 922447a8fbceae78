package domain

import "encoding/json"

// ParseConfig decodes a stored bot configuration blob. Older rows hold the
// blob double-encoded as a JSON string; both shapes are accepted. Anything
// that fails to decode yields the zero config, decode errors are swallowed.
func ParseConfig(raw []byte) BotConfig {
	var cfg BotConfig
	if len(raw) == 0 {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err == nil {
		return cfg
	}
	cfg = BotConfig{}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return BotConfig{}
	}
	if err := json.Unmarshal([]byte(inner), &cfg); err != nil {
		return BotConfig{}
	}
	return cfg
}
