package config

import "maps"

type parserConfig struct {
	Proxy      string                    `toml:"proxy" mapstructure:"proxy" json:"proxy"`
	ParserCfgs map[string]map[string]any `mapstructure:",remain"`
}

// GetParserConfigByName returns a copy of the [parser.<name>] section, with
// the parser-wide proxy filled in when the section sets none.
func (c Config) GetParserConfigByName(name string) map[string]any {
	var cfg map[string]any
	if c.Parser.ParserCfgs != nil {
		cfg = maps.Clone(c.Parser.ParserCfgs[name])
	}
	if c.Parser.Proxy == "" {
		return cfg
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	if p, ok := cfg["proxy"].(string); !ok || p == "" {
		cfg["proxy"] = c.Parser.Proxy
	}
	return cfg
}
