// Package auth resolves a caller's identity from federated request headers or,
// as a failover, from a locally stored credential record. User records live in
// a dedicated shard of the backing store, keyed by login name.
package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/corpushub/catalog/internal/domain"
	"github.com/corpushub/catalog/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ReservedUser keys the global user-id counter inside the identity shard. No
// real account may ever use it as a login name.
const ReservedUser = "__user_count"

// MinStoredCredential is the minimum length of a stored password hash; records
// with anything shorter are treated as having no usable credential at all.
const MinStoredCredential = 5

// DefaultIDHeaders is the priority order in which federated identity headers
// are consulted. The first present and non-empty one wins.
var DefaultIDHeaders = []string{"Eppn", "Persistent-Id", "Mail"}

const (
	headerGivenName   = "Givenname"
	headerSurname     = "Sn"
	headerDisplayName = "Displayname"
	headerCommonName  = "Cn"
	headerProvider    = "Shib-Identity-Provider"
	headerMail        = "Mail"
)

// Headers abstracts the federated header set; *http.Header satisfies it.
type Headers interface {
	Get(name string) string
}

// Session is the slice of session behaviour logout needs.
type Session interface {
	Destroy() error
}

// Service implements the two-path identity resolution. All rejection outcomes
// collapse into the anonymous identity so callers cannot distinguish a failed
// login from no login at all.
type Service struct {
	store       store.Store
	anonymousID int64
	logoutURL   string
	idHeaders   []string
	// PublicCorpora yields the current public corpus id set; per-user
	// entitlements are not implemented yet and PermittedCorpora passes the
	// public set through.
	publicCorpora func() []string
}

func New(st store.Store, anonymousID int64, logoutURL string, idHeaders []string, publicCorpora func() []string) *Service {
	if len(idHeaders) == 0 {
		idHeaders = DefaultIDHeaders
	}
	return &Service{
		store:         st,
		anonymousID:   anonymousID,
		logoutURL:     logoutURL,
		idHeaders:     idHeaders,
		publicCorpora: publicCorpora,
	}
}

// Anonymous returns the fixed identity used for every unauthenticated or
// rejected caller.
func (s *Service) Anonymous() domain.User {
	return domain.User{ID: s.anonymousID, Username: "anonymous", Fullname: "anonymous"}
}

// IsAnonymous reports whether u is the anonymous identity.
func (s *Service) IsAnonymous(u domain.User) bool {
	return u.ID == s.anonymousID
}

// Validate resolves a caller to a user record. A non-empty username selects
// the local-credential path; otherwise the federated headers are inspected.
// Validate never fails: every rejection resolves to the anonymous identity.
func (s *Service) Validate(ctx context.Context, username, password string, h Headers) domain.User {
	var (
		u   *domain.User
		err error
	)
	if username != "" {
		if username == ReservedUser {
			log.Warn().Str("username", username).Msg("reserved username used in login attempt")
			return s.Anonymous()
		}
		u, err = s.localAuth(ctx, username, password)
	} else {
		u, err = s.federatedAuth(ctx, h)
	}
	if err != nil {
		log.Error().Err(err).Msg("identity resolution failed")
		return s.Anonymous()
	}
	if u == nil {
		return s.Anonymous()
	}
	return *u
}

// localAuth checks the supplied password against the stored record. Any
// mismatch, absent record or unusable stored credential yields (nil, nil).
func (s *Service) localAuth(ctx context.Context, username, password string) (*domain.User, error) {
	rec, err := s.store.HashGetAll(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, nil
	}
	hash := rec["password"]
	if len(hash) < MinStoredCredential {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}
	delete(rec, "password")
	return userFromRecord(username, rec), nil
}

// federatedAuth inspects the request headers and resolves or provisions the
// corresponding user record.
func (s *Service) federatedAuth(ctx context.Context, h Headers) (*domain.User, error) {
	if h == nil {
		return nil, nil
	}
	username := firstNonEmpty(h, s.idHeaders...)
	if username == "" || username == ReservedUser {
		return nil, nil
	}

	firstname := h.Get(headerGivenName)
	surname := h.Get(headerSurname)
	if firstname == "" && surname == "" {
		// No structured name headers; IdPs are not consistent here, so fall
		// back to splitting the display name.
		names := strings.Fields(firstNonEmpty(h, headerDisplayName, headerCommonName))
		if len(names) > 0 {
			surname = names[len(names)-1]
			firstname = strings.Join(names[:len(names)-1], " ")
		}
	}
	idp := h.Get(headerProvider)

	rec, err := s.store.HashGetAll(ctx, username)
	if err != nil {
		return nil, err
	}
	if rec["username"] == "" {
		fullname := strings.TrimSpace(firstname + " " + surname)
		return s.provision(ctx, username, idp, fullname, h.Get(headerMail))
	}
	if rec["idp"] != idp {
		log.Warn().
			Str("username", username).
			Str("stored_idp", rec["idp"]).
			Str("current_idp", idp).
			Msg("identity provider changed for user, rejecting")
		return nil, nil
	}
	return userFromRecord(username, rec), nil
}

// provision creates the user record on first federated login. The id field is
// written with a set-if-absent guard so concurrent first logins for the same
// identity converge on a single allocated id; the descriptive fields are
// identical across racers and may be written by any of them.
func (s *Service) provision(ctx context.Context, username, idp, fullname, email string) (*domain.User, error) {
	next, err := s.store.Incr(ctx, ReservedUser)
	if err != nil {
		return nil, err
	}
	won, err := s.store.HashSetIfAbsent(ctx, username, "id", strconv.FormatInt(next, 10))
	if err != nil {
		return nil, err
	}
	if !won {
		log.Info().Str("username", username).Msg("concurrent provisioning detected, reusing existing id")
	}
	err = s.store.HashSetMap(ctx, username, map[string]string{
		"username": username,
		"idp":      idp,
		"fullname": fullname,
		"email":    email,
	})
	if err != nil {
		return nil, err
	}
	rec, err := s.store.HashGetAll(ctx, username)
	if err != nil {
		return nil, err
	}
	return userFromRecord(username, rec), nil
}

// Logout destroys the caller's session.
func (s *Service) Logout(sess Session) error {
	return sess.Destroy()
}

// GetLogoutURL returns the configured post-logout location.
func (s *Service) GetLogoutURL() string {
	return s.logoutURL
}

// PermittedCorpora returns the corpus ids visible to the given user. Private
// per-user entitlements are not implemented; everyone sees the public set.
func (s *Service) PermittedCorpora(userID int64) map[string]struct{} {
	ids := s.publicCorpora()
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// IsAdministrator reports whether the user holds the admin role. There is no
// role model yet.
func (s *Service) IsAdministrator(userID int64) bool {
	return false
}

func userFromRecord(username string, rec map[string]string) *domain.User {
	id, err := strconv.ParseInt(rec["id"], 10, 64)
	if err != nil {
		log.Warn().Str("username", username).Str("id", rec["id"]).Msg("user record with malformed id")
		return nil
	}
	u := &domain.User{
		ID:       id,
		Username: username,
		Fullname: rec["fullname"],
		Provider: rec["idp"],
		Email:    rec["email"],
	}
	if u.Fullname == "" {
		u.Fullname = "Mr. No Name"
	}
	return u
}

func firstNonEmpty(h Headers, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}
