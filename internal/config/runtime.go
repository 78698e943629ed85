package config

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/yourusername/marvin/internal/acl"
	"github.com/yourusername/marvin/internal/errors"
	"github.com/yourusername/marvin/internal/rewrite"
)

// URLCmd is a compiled templated remote fetch command.
type URLCmd struct {
	Name         string
	Template     *template.Template
	OutputFilter *regexp.Regexp
}

// Render executes the URL template with the user-supplied argument string
// and its whitespace-split form.
func (c *URLCmd) Render(arg string, args []string) (string, error) {
	var buf bytes.Buffer
	data := map[string]interface{}{
		"arg":  arg,
		"args": args,
	}
	if err := c.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("url command %s: %w", c.Name, err)
	}
	return buf.String(), nil
}

// Runtime is the immutable compiled snapshot of the configuration. It is
// built wholesale by Build and replaced wholesale on reload; readers that
// captured a snapshot keep observing it unchanged.
type Runtime struct {
	Server   ServerConfig
	Commands CommandsConfig

	Channel         string
	PrivilegedNicks map[string]bool
	URLLogDB        string
	URLBlacklist    []string
	URLLogRetention time.Duration

	URLRegex *regexp.Regexp

	ModeOACL          *acl.ACL
	AutoOACL          *acl.ACL
	InviteDenyHostACL *acl.ACL
	InviteDenyNickACL *acl.ACL

	Rewrites *rewrite.Table

	URLFetchChannels       map[string]bool
	URLCmdChannels         map[string]bool
	URLMutChannels         map[string]bool
	URLLogChannels         map[string]bool
	URLDupComplainChannels map[string]bool
	URLDupExpireDays       map[string]int64
	URLDupTimezones        map[string]*time.Location

	URLCommands map[string]*URLCmd
}

// Build loads the config file at path and compiles every pattern, template
// and timezone in it. Any failure aborts the whole build: the caller keeps
// whatever snapshot it had before.
func Build(path string) (*Runtime, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, errors.NewConfigError(path, err)
	}
	return Compile(cfg)
}

// Compile turns a decoded schema into a Runtime snapshot.
func Compile(cfg *Config) (*Runtime, error) {
	rt := &Runtime{
		Server:                 cfg.Server,
		Commands:               cfg.Commands,
		Channel:                cfg.Bot.Channel,
		PrivilegedNicks:        cfg.Bot.PrivilegedNicks,
		URLLogDB:               expandPath(cfg.Bot.URLLogDB),
		URLBlacklist:           cfg.Bot.URLBlacklist,
		URLLogRetention:        time.Duration(cfg.Bot.URLLogRetentionDays) * 24 * time.Hour,
		URLFetchChannels:       cfg.Channels.URLFetch,
		URLCmdChannels:         cfg.Channels.URLCmd,
		URLMutChannels:         cfg.Channels.URLMut,
		URLLogChannels:         cfg.Channels.URLLog,
		URLDupComplainChannels: cfg.Channels.URLDupComplain,
		URLDupExpireDays:       cfg.Channels.URLDupExpire,
	}

	var err error
	if rt.URLRegex, err = regexp.Compile(cfg.Bot.URLRegex); err != nil {
		return nil, errors.NewConfigError("url_regex", errors.NewPatternError(cfg.Bot.URLRegex, err))
	}

	if rt.ModeOACL, err = acl.New(cfg.ACL.ModeO); err != nil {
		return nil, errors.NewConfigError("acl.mode_o", err)
	}
	if rt.AutoOACL, err = acl.New(cfg.ACL.AutoO); err != nil {
		return nil, errors.NewConfigError("acl.auto_o", err)
	}
	if rt.InviteDenyHostACL, err = acl.New(cfg.ACL.InviteDenyHost); err != nil {
		return nil, errors.NewConfigError("acl.invite_deny_host", err)
	}
	if rt.InviteDenyNickACL, err = acl.New(cfg.ACL.InviteDenyNick); err != nil {
		return nil, errors.NewConfigError("acl.invite_deny_nick", err)
	}

	rules := make([]rewrite.Rule, 0, len(cfg.URLRewrites))
	for _, r := range cfg.URLRewrites {
		rules = append(rules, rewrite.Rule{Pattern: r.Pattern, Replacement: r.Replacement})
	}
	if rt.Rewrites, err = rewrite.New(rules); err != nil {
		return nil, errors.NewConfigError("url_rewrites", err)
	}

	rt.URLCommands = make(map[string]*URLCmd, len(cfg.URLCommands))
	for name, uc := range cfg.URLCommands {
		cmd, err := compileURLCmd(name, uc)
		if err != nil {
			return nil, errors.NewConfigError("url_commands."+name, err)
		}
		rt.URLCommands[name] = cmd
	}

	rt.URLDupTimezones = make(map[string]*time.Location, len(cfg.Channels.URLDupTimezone))
	for ch, tz := range cfg.Channels.URLDupTimezone {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("url_dup_timezone %q: %q", ch, tz), err)
		}
		rt.URLDupTimezones[ch] = loc
	}

	return rt, nil
}

func compileURLCmd(name string, uc URLCommand) (*URLCmd, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(uc.URLTemplate)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	// A template that parses can still fail at render time; probe it with
	// a placeholder argument so a broken command fails the reload, not a
	// channel message months later.
	var buf bytes.Buffer
	probe := map[string]interface{}{"arg": "probe", "args": []string{"probe"}}
	if err := tmpl.Execute(&buf, probe); err != nil {
		return nil, fmt.Errorf("template render: %w", err)
	}

	filter, err := regexp.Compile(uc.OutputFilter)
	if err != nil {
		return nil, errors.NewPatternError(uc.OutputFilter, err)
	}

	return &URLCmd{Name: name, Template: tmpl, OutputFilter: filter}, nil
}

// Wild looks up key in m, falling back to the "*" entry when no exact
// entry exists.
func Wild[T any](m map[string]T, key string) (T, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	v, ok := m["*"]
	return v, ok
}

// WildBool reports whether the flag map enables key, with wildcard
// fallback. A missing entry means disabled.
func WildBool(m map[string]bool, key string) bool {
	v, ok := Wild(m, key)
	return ok && v
}

// DupExpire returns the duplicate-URL expiry window for a channel,
// defaulting to 7 days.
func (rt *Runtime) DupExpire(channel string) time.Duration {
	days, ok := Wild(rt.URLDupExpireDays, channel)
	if !ok {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// DupLocation returns the timezone for a channel's duplicate-URL reports,
// defaulting to UTC.
func (rt *Runtime) DupLocation(channel string) *time.Location {
	if loc, ok := Wild(rt.URLDupTimezones, channel); ok {
		return loc
	}
	return time.UTC
}
