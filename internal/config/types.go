package config

// Config is the on-disk TOML schema. It is decoded verbatim and then
// compiled into a Runtime snapshot; nothing reads Config after Build.
type Config struct {
	Server      ServerConfig          `toml:"server"`
	Bot         BotConfig             `toml:"bot"`
	Commands    CommandsConfig        `toml:"commands"`
	Channels    ChannelsConfig        `toml:"channels"`
	ACL         ACLConfig             `toml:"acl"`
	URLCommands map[string]URLCommand `toml:"url_commands"`
	URLRewrites []URLRewrite          `toml:"url_rewrites"`
}

// ServerConfig contains IRC server connection settings
type ServerConfig struct {
	Address  string `toml:"address"`
	Port     int    `toml:"port"`
	TLS      bool   `toml:"tls"`
	Nickname string `toml:"nickname"`
	Username string `toml:"username"`
	Realname string `toml:"realname"`
}

// BotConfig contains bot behavior settings
type BotConfig struct {
	Channel         string          `toml:"channel"`
	PrivilegedNicks map[string]bool `toml:"privileged_nicks"`
	URLRegex        string          `toml:"url_regex"`
	URLLogDB        string          `toml:"url_log_db"`
	URLBlacklist    []string        `toml:"url_blacklist"`

	// URLLogRetentionDays bounds how long URL sightings are kept.
	// Zero keeps them forever.
	URLLogRetentionDays int64 `toml:"url_log_retention_days"`
}

// CommandsConfig maps each built-in command to its keyword. Keywords are
// configuration values, not hard-coded strings, so operators can rename
// or obscure them.
type CommandsConfig struct {
	DumpACL string `toml:"dumpacl"`
	Invite  string `toml:"invite"`
	Join    string `toml:"join"`
	ModeO   string `toml:"mode_o"`
	ModeV   string `toml:"mode_v"`
	Nick    string `toml:"nick"`
	Reload  string `toml:"reload"`
	Say     string `toml:"say"`
}

// ChannelsConfig holds the per-channel feature maps. Key "*" acts as the
// default when no exact channel entry exists. The wildcard is special in
// these maps only; the privileged-nicks map is exact-match.
type ChannelsConfig struct {
	URLFetch       map[string]bool   `toml:"url_fetch"`
	URLCmd         map[string]bool   `toml:"url_cmd"`
	URLMut         map[string]bool   `toml:"url_mut"`
	URLLog         map[string]bool   `toml:"url_log"`
	URLDupComplain map[string]bool   `toml:"url_dup_complain"`
	URLDupExpire   map[string]int64  `toml:"url_dup_expire_days"`
	URLDupTimezone map[string]string `toml:"url_dup_timezone"`
}

// ACLConfig holds the ordered regex rule lists. Rules match against the
// sender's user@host identity string; first match wins.
type ACLConfig struct {
	ModeO          []string `toml:"mode_o"`
	AutoO          []string `toml:"auto_o"`
	InviteDenyHost []string `toml:"invite_deny_host"`
	InviteDenyNick []string `toml:"invite_deny_nick"`
}

// URLCommand is a named templated remote fetch triggered with
// "!<name> args" on a channel. The template renders the URL to fetch;
// the output filter's first capture group selects the reply lines.
type URLCommand struct {
	URLTemplate  string `toml:"url_tmpl"`
	OutputFilter string `toml:"output_filter"`
}

// URLRewrite is one ordered rewrite rule.
type URLRewrite struct {
	Pattern     string `toml:"pattern"`
	Replacement string `toml:"replacement"`
}
