package session

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// PreferenceKey is the local storage key holding the remembered session.
const PreferenceKey = "prodigy_default_session"

// EnvAllowedSessions names the comma-separated list of allowed sessions.
const EnvAllowedSessions = "PRODIGY_POSSIBLE_SESSIONS"

// Store is a small key/value store standing in for browser local storage.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Config holds the allowed named sessions and the one the host runs under.
type Config struct {
	Allowed []string
	Current string
}

// AllowedFromEnv splits the allowed session list from getenv. Empty
// entries are dropped.
func AllowedFromEnv(getenv func(string) string) []string {
	var out []string
	for _, s := range strings.Split(getenv(EnvAllowedSessions), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Action is what the page should do on mount.
type Action int

const (
	// Stay keeps the current, allowed session.
	Stay Action = iota
	// Redirect reloads the page under Decision.Session.
	Redirect
	// Prompt asks the user to pick one of Decision.Options.
	Prompt
)

var actionNames = [...]string{Stay: "stay", Redirect: "redirect", Prompt: "prompt"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionNames) {
		return nil, fmt.Errorf("未知的会话动作 %d", int(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (a *Action) UnmarshalText(b []byte) error {
	for i, name := range actionNames {
		if string(b) == name {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("未知的会话动作 %q", b)
}

// Decision is the outcome of Resolve.
type Decision struct {
	Action   Action   `json:"action"`
	Session  string   `json:"session"`           // Redirect 的目标；Prompt 时为默认选项
	Options  []string `json:"options,omitempty"` // Prompt 时可选的会话
	Remember bool     `json:"remember"`          // Prompt 时“记住用户”的默认值
}

// Resolve decides how to handle the session on page load: an allowed
// current session stays, otherwise a remembered session wins, otherwise the
// user is prompted with the first allowed session preselected.
func Resolve(cfg Config, store Store) (Decision, error) {
	if cfg.Current != "" && slices.Contains(cfg.Allowed, cfg.Current) {
		return Decision{Action: Stay, Session: cfg.Current}, nil
	}
	if store != nil {
		saved, ok, err := store.Get(PreferenceKey)
		if err != nil {
			return Decision{}, fmt.Errorf("读取会话偏好失败: %w", err)
		}
		if ok && saved != "" {
			return Decision{Action: Redirect, Session: saved}, nil
		}
	}
	d := Decision{Action: Prompt, Options: slices.Clone(cfg.Allowed), Remember: true}
	if len(cfg.Allowed) > 0 {
		d.Session = cfg.Allowed[0]
	}
	return d, nil
}

// Choose completes a prompt: the choice is remembered when asked to and the
// page is redirected to it.
func Choose(store Store, choice string, remember bool) (Decision, error) {
	if choice == "" {
		return Decision{}, fmt.Errorf("未选择会话")
	}
	if remember && store != nil {
		if err := store.Set(PreferenceKey, choice); err != nil {
			return Decision{}, fmt.Errorf("保存会话偏好失败: %w", err)
		}
	}
	return Decision{Action: Redirect, Session: choice}, nil
}

// RedirectURL returns pageURL with its session query parameter set.
func RedirectURL(pageURL, session string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("无法解析页面地址 %s: %w", pageURL, err)
	}
	q := u.Query()
	q.Set("session", session)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
