// Package config owns rook's persisted state: the connection store (one
// record per authenticated graph, JSON, owner-only permissions) and the user
// preferences file (TOML).
//
// The store is deliberately unlocked: concurrent writers race and the last
// write wins. Writes happen only during setup, removal, and status sync, all
// operator-driven, so the simplicity is worth the (documented) race.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/aidanlsb/rook/internal/atomicfile"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
)

// StoreVersion is the connection store schema this build reads and writes.
// Files declaring a newer version are rejected rather than misread.
const StoreVersion = 1

// Connection is one authenticated graph in the store.
type Connection struct {
	Name                 string `json:"name" validate:"required,graphname"`
	Type                 string `json:"type" validate:"required,oneof=hosted offline"`
	Token                string `json:"token" validate:"required,roamtoken"`
	Nickname             string `json:"nickname" validate:"required,max=64"`
	AccessLevel          string `json:"accessLevel,omitempty" validate:"omitempty,oneof=read-only read-append full"`
	LastKnownTokenStatus string `json:"lastKnownTokenStatus,omitempty" validate:"omitempty,oneof=active revoked"`
}

// Graph materializes the stored record for the API client.
func (c Connection) Graph() roam.Graph {
	return roam.Graph{
		Name:        c.Name,
		Type:        c.Type,
		Token:       c.Token,
		Nickname:    c.Nickname,
		AccessLevel: c.AccessLevel,
		TokenStatus: c.LastKnownTokenStatus,
	}
}

func sameIdentity(a, b Connection) bool {
	return a.Name == b.Name && a.Type == b.Type
}

type storeDocument struct {
	Version     int          `json:"version"`
	Connections []Connection `json:"connections"`
}

// Store reads and writes the connection file. It keeps no state between
// calls, so external edits are visible on the very next operation.
type Store struct {
	path string
}

// NewStore binds a store to an explicit file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore resolves the store location from the environment
// (--config-dir override passed through, else $ROOK_CONFIG_DIR, else ~/.rook).
func DefaultStore(configDir string) (*Store, error) {
	dir, err := paths.ConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	return NewStore(paths.Connections(dir)), nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the deduplicated, validated set of connections.
func (s *Store) Load() ([]Connection, error) {
	doc, err := s.readRaw()
	if err != nil {
		return nil, err
	}
	if err := validateConnections(doc.Connections); err != nil {
		return nil, err
	}
	s.checkPermissions()
	return dedupe(doc.Connections), nil
}

// Save validates conn, rejects nickname collisions against other identities,
// and upserts by identity (name, type): replace when present, append otherwise.
func (s *Store) Save(conn Connection) error {
	if err := validateConnection(conn, -1); err != nil {
		return err
	}

	doc, err := s.readRaw()
	if err != nil {
		if roam.CodeOf(err) != roam.ErrCodeConfigNotFound {
			return err
		}
		doc = &storeDocument{Version: StoreVersion}
	}

	for _, existing := range doc.Connections {
		if strings.EqualFold(existing.Nickname, conn.Nickname) && !sameIdentity(existing, conn) {
			return roam.Errorf(roam.ErrCodeNicknameCollision,
				"nickname %q already refers to graph %q (%s)", conn.Nickname, existing.Name, existing.Type).
				WithSuggestion("Pick a different nickname, or remove the existing connection first with `rook graph remove " + existing.Nickname + "`.").
				WithContext("existing_graph", existing.Name).
				WithContext("existing_type", existing.Type)
		}
	}

	replaced := false
	for i, existing := range doc.Connections {
		if sameIdentity(existing, conn) {
			doc.Connections[i] = conn
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Connections = append(doc.Connections, conn)
	}
	return s.writeRaw(doc)
}

// Remove deletes the connection with the given nickname (case-insensitive).
// It reports whether anything was removed; no write happens on a miss.
func (s *Store) Remove(nickname string) (bool, error) {
	doc, err := s.readRaw()
	if err != nil {
		if roam.CodeOf(err) == roam.ErrCodeConfigNotFound {
			return false, nil
		}
		return false, err
	}

	kept := doc.Connections[:0]
	removed := false
	for _, conn := range doc.Connections {
		if strings.EqualFold(conn.Nickname, nickname) {
			removed = true
			continue
		}
		kept = append(kept, conn)
	}
	if !removed {
		return false, nil
	}
	doc.Connections = kept
	if err := s.writeRaw(doc); err != nil {
		return false, err
	}
	return true, nil
}

// StatusUpdate carries the fields status sync may change. Empty fields are
// left alone.
type StatusUpdate struct {
	AccessLevel string
	TokenStatus string
}

// UpdateStatus merges changed fields into the connection with the given
// nickname. When nothing actually changes, the disk write is skipped
// entirely; status sync runs on hot paths and must not churn the file.
// Reports whether a write happened.
func (s *Store) UpdateStatus(nickname string, upd StatusUpdate) (bool, error) {
	doc, err := s.readRaw()
	if err != nil {
		return false, err
	}

	idx := -1
	for i, conn := range doc.Connections {
		if strings.EqualFold(conn.Nickname, nickname) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, roam.Errorf(roam.ErrCodeGraphNotConfigured, "no connection has the nickname %q", nickname)
	}

	changed := false
	if upd.AccessLevel != "" && doc.Connections[idx].AccessLevel != upd.AccessLevel {
		doc.Connections[idx].AccessLevel = upd.AccessLevel
		changed = true
	}
	if upd.TokenStatus != "" && doc.Connections[idx].LastKnownTokenStatus != upd.TokenStatus {
		doc.Connections[idx].LastKnownTokenStatus = upd.TokenStatus
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := s.writeRaw(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) readRaw() (*storeDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, roam.Errorf(roam.ErrCodeConfigNotFound, "no graphs are configured (%s does not exist)", s.path).
			WithSuggestion("Run `rook setup` to connect your first graph.")
	}
	if err != nil {
		return nil, fmt.Errorf("read connection store: %w", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, roam.Errorf(roam.ErrCodeValidation, "connection store %s is not valid JSON: %v", s.path, err).
			WithSuggestion("Fix or delete the file, then run `rook setup` to reconnect your graphs.")
	}
	if doc.Version > StoreVersion {
		return nil, roam.Errorf(roam.ErrCodeConfigTooNew,
			"connection store %s uses schema version %d but this build understands up to %d", s.path, doc.Version, StoreVersion).
			WithSuggestion("Update rook to a release that supports this store format.")
	}
	// Files written before the version field existed read as version 0.
	if doc.Version == 0 {
		doc.Version = StoreVersion
	}
	return &doc, nil
}

func (s *Store) writeRaw(doc *storeDocument) error {
	doc.Version = StoreVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode connection store: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// Tokens live in this file: owner-only, always.
	if err := atomicfile.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write connection store: %w", err)
	}
	return nil
}

// checkPermissions warns (once per process) when the store is readable by
// group/other, and re-tightens it best-effort.
func (s *Store) checkPermissions() {
	st, err := os.Stat(s.path)
	if err != nil {
		return
	}
	if st.Mode().Perm()&0o077 == 0 {
		return
	}
	warnings.warn("permissions",
		"warning: %s is readable by other users (mode %o); tightening to 600", s.path, st.Mode().Perm())
	_ = os.Chmod(s.path, 0o600)
}

// dedupe suppresses an offline connection whose name is also configured as
// hosted. The offline record stays on disk untouched.
func dedupe(conns []Connection) []Connection {
	hosted := make(map[string]bool)
	for _, c := range conns {
		if c.Type == roam.GraphHosted {
			hosted[c.Name] = true
		}
	}

	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if c.Type == roam.GraphOffline && hosted[c.Name] {
			warnings.warn("dedup:"+c.Name,
				"warning: graph %q is configured as both hosted and offline; using the hosted connection", c.Name)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Notice is one warning raised while loading the store, kept for callers
// that surface warnings structurally (the CLI's --json envelope).
type Notice struct {
	Code    string
	Message string
}

// warnOnce suppresses repeat warnings for the lifetime of the process. It
// exists to keep hot paths quiet, not for correctness.
type warnOnce struct {
	mu      sync.Mutex
	seen    map[string]bool
	notices []Notice
	print   func(format string, args ...any)
}

var warnings = &warnOnce{
	print: func(format string, args ...any) { fmt.Fprintf(os.Stderr, format+"\n", args...) },
}

func (w *warnOnce) warn(key, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if w.seen[key] {
		return
	}
	w.seen[key] = true

	// The key doubles as the notice code; per-item keys carry a ":<name>"
	// suffix that only matters for suppression.
	code := key
	if i := strings.IndexByte(key, ':'); i >= 0 {
		code = key[:i]
	}
	msg := fmt.Sprintf(format, args...)
	w.notices = append(w.notices, Notice{Code: code, Message: strings.TrimPrefix(msg, "warning: ")})
	w.print("%s", msg)
}

// TakeNotices drains the warnings recorded since the last call.
func TakeNotices() []Notice {
	warnings.mu.Lock()
	defer warnings.mu.Unlock()
	out := warnings.notices
	warnings.notices = nil
	return out
}

// reset swaps the sink and clears suppression state (tests only).
func (w *warnOnce) reset(print func(format string, args ...any)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = nil
	w.notices = nil
	w.print = print
}

var validate = newValidator()

var graphNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so validation errors match the file format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("graphname", func(fl validator.FieldLevel) bool {
		return graphNameRE.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("roamtoken", func(fl validator.FieldLevel) bool {
		return roam.ValidToken(fl.Field().String())
	}))
	return v
}

// validateConnections checks every record plus cross-record nickname
// uniqueness on the raw (pre-dedup) set.
func validateConnections(conns []Connection) error {
	for i, conn := range conns {
		if err := validateConnection(conn, i); err != nil {
			return err
		}
	}

	byNickname := make(map[string]int, len(conns))
	for i, conn := range conns {
		key := strings.ToLower(conn.Nickname)
		if j, dup := byNickname[key]; dup {
			return roam.Errorf(roam.ErrCodeValidation,
				"connections[%d].nickname: %q is already used by connections[%d] (nicknames are case-insensitive)", i, conn.Nickname, j).
				WithSuggestion("Edit the store so every connection has a distinct nickname.")
		}
		byNickname[key] = i
	}
	return nil
}

// validateConnection checks one record; index >= 0 prefixes the field path
// for records inside the store file.
func validateConnection(conn Connection, index int) error {
	err := validate.Struct(conn)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return roam.Errorf(roam.ErrCodeValidation, "invalid connection: %v", err)
	}

	fe := verrs[0]
	path := fe.Field()
	if index >= 0 {
		path = fmt.Sprintf("connections[%d].%s", index, fe.Field())
	}
	return roam.Errorf(roam.ErrCodeValidation, "%s %s", path, fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "graphname":
		return "may only contain letters, digits, hyphens, and underscores"
	case "roamtoken":
		return fmt.Sprintf("must start with %q", roam.TokenPrefix)
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
