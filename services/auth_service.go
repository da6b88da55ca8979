package services

import (
	"context"
	"errors"
	"fmt"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

type AuthService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	store  database.UserStore
	cache  Cache
	params *structs.ArgonParams

	guard     fillGuard
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(cfg *structs.Config, logger *gecho.Logger, store database.UserStore, cache Cache) *AuthService {
	return &AuthService{
		logger: logger,
		cfg:    cfg,
		store:  store,
		cache:  cache,
		params: lib.DefaultArgonParams,
	}
}

// Register creates an account. A taken email yields lib.ErrConflict, both
// from the lookup and from the unique index when two registrations race.
func (as *AuthService) Register(ctx context.Context, req *structs.RegisterRequest) (*tables.User, error) {
	startTime := time.Now()

	existing, err := as.store.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, lib.ErrNotFound) {
		as.logger.Error("Failed to look up email during registration", gecho.Field("error", err))
		return nil, err
	}
	if existing != nil {
		as.logger.Warn("Registration failed - duplicate email", gecho.Field("email", req.Email))
		return nil, lib.ErrConflict
	}

	passwordHash, err := lib.HashPassword(req.Password, as.params)
	if err != nil {
		as.logger.Error("Failed to hash password", gecho.Field("error", err))
		return nil, err
	}

	user := &tables.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := as.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, lib.ErrConflict) {
			as.logger.Warn("Registration failed - duplicate email", gecho.Field("email", req.Email))
		} else {
			as.logger.Error("Database error during registration", gecho.Field("error", lib.GetDetailForLogging(err)))
		}
		return nil, err
	}

	as.logger.Debug("User registered successfully",
		gecho.Field("user_id", user.ID),
		gecho.Field("duration", time.Since(startTime)),
	)
	return user, nil
}

// Authenticate checks the credentials and opens a session. Unknown emails
// and wrong passwords fail with the same error after the same amount of
// hashing work.
func (as *AuthService) Authenticate(ctx context.Context, email, password string) (*tables.User, *structs.Session, error) {
	startTime := time.Now()

	token := as.guard.token()
	user, err := as.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, lib.ErrNotFound) {
		as.logger.Error("Unexpected database error during login", gecho.Field("error", lib.GetDetailForLogging(err)))
		return nil, nil, err
	}

	if user == nil {
		_, _ = lib.VerifyPassword(password, as.getDummyHash())
		as.logger.Debug("User not found during login attempt", gecho.Field("identifier", email))
		return nil, nil, lib.ErrInvalidCredentials
	}

	valid, err := lib.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		as.logger.Error("Failed to verify password hash", gecho.Field("error", err), gecho.Field("user_id", user.ID))
		return nil, nil, err
	}
	if !valid {
		as.logger.Debug("Invalid password attempt", gecho.Field("user_id", user.ID))
		return nil, nil, lib.ErrInvalidCredentials
	}

	session, err := lib.GenerateSessionToken(user.ID, as.cfg.Auth.SessionExpiry, as.cfg.Auth.SessionTokenSecret)
	if err != nil {
		as.logger.Error("Failed to issue session token", gecho.Field("error", err), gecho.Field("user_id", user.ID))
		return nil, nil, err
	}

	as.cacheUser(user, token)

	as.logger.Debug("User logged in successfully",
		gecho.Field("user_id", user.ID),
		gecho.Field("duration", time.Since(startTime)),
	)
	return user, session, nil
}

// ResolveSession validates a session token and rejects revoked sessions.
func (as *AuthService) ResolveSession(token string) (*structs.Session, error) {
	claims, err := lib.ParseToken(token, as.cfg.Auth.SessionTokenSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := as.cache.Get(revokedSessionKey(claims.Jti.String()))
	if err != nil {
		// revocation lookups fail open, like the rate limiter
		as.logger.Warn("Failed to check session revocation", gecho.Field("error", err), gecho.Field("jti", claims.Jti))
	} else if revoked != "" {
		return nil, lib.ErrRevokedToken
	}

	return &structs.Session{
		ID:        claims.Jti,
		UserID:    claims.Sub,
		Token:     token,
		IssuedAt:  claims.Iat,
		ExpiresAt: claims.Exp,
	}, nil
}

// Logout revokes the session for the rest of its lifetime.
func (as *AuthService) Logout(session *structs.Session) error {
	if session == nil {
		return nil
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := as.cache.Set(revokedSessionKey(session.ID.String()), "1", ttl); err != nil {
		as.logger.Error("Failed to revoke session", gecho.Field("error", err), gecho.Field("jti", session.ID))
		return err
	}
	as.logger.Debug("Session revoked", gecho.Field("user_id", session.UserID), gecho.Field("jti", session.ID))
	return nil
}

// GetUserByID is cache-first; the cached copy never carries the password
// hash.
func (as *AuthService) GetUserByID(ctx context.Context, userID int64) (*tables.User, error) {
	cached, err := getJSON[tables.User](as.cache, userKey(userID))
	if err != nil {
		as.logger.Warn("Failed to get user from cache", gecho.Field("error", err), gecho.Field("user_id", userID))
	} else if cached != nil {
		return cached, nil
	}

	token := as.guard.token()
	user, err := as.store.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, lib.ErrNotFound) {
			as.logger.Error("Failed to find user by ID", gecho.Field("error", err), gecho.Field("user_id", userID))
		}
		return nil, err
	}

	as.cacheUser(user, token)

	return user, nil
}

// UpdateProfile applies an account change after checking the current
// password. Nothing is written when the password is wrong (lib.ErrRejected)
// or the new email belongs to someone else (lib.ErrConflict).
func (as *AuthService) UpdateProfile(ctx context.Context, session *structs.Session, req *structs.AccountUpdateRequest) (*tables.User, error) {
	if session == nil {
		return nil, lib.ErrUnauthenticated
	}
	startTime := time.Now()

	user, err := as.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		as.logger.Error("Failed to load user for update", gecho.Field("error", err), gecho.Field("user_id", session.UserID))
		return nil, err
	}

	valid, err := lib.VerifyPassword(req.OldPassword, user.PasswordHash)
	if err != nil {
		as.logger.Error("Failed to verify password hash", gecho.Field("error", err), gecho.Field("user_id", user.ID))
		return nil, err
	}
	if !valid {
		as.logger.Warn("Account update rejected - wrong password", gecho.Field("user_id", user.ID))
		return nil, lib.ErrRejected
	}

	if req.Email != user.Email {
		other, err := as.store.GetUserByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, lib.ErrNotFound) {
			return nil, err
		}
		if other != nil {
			as.logger.Warn("Account update rejected - email taken", gecho.Field("user_id", user.ID))
			return nil, lib.ErrConflict
		}
	}

	updated := *user
	updated.FirstName = req.FirstName
	updated.LastName = req.LastName
	updated.Email = req.Email
	if req.NewPassword != "" {
		hash, err := lib.HashPassword(req.NewPassword, as.params)
		if err != nil {
			return nil, fmt.Errorf("failed to hash new password: %w", err)
		}
		updated.PasswordHash = hash
	}

	if err := as.store.UpdateUser(ctx, &updated); err != nil {
		as.logger.Error("Failed to update user", gecho.Field("error", lib.GetDetailForLogging(err)), gecho.Field("user_id", user.ID))
		return nil, err
	}

	as.guard.invalidate()
	if err := as.cache.Delete(userKey(user.ID)); err != nil {
		as.logger.Warn("Failed to invalidate user cache", gecho.Field("error", err), gecho.Field("user_id", user.ID))
	}

	as.logger.Info("Account updated",
		gecho.Field("user_id", user.ID),
		gecho.Field("email_changed", req.Email != user.Email),
		gecho.Field("password_changed", req.NewPassword != ""),
		gecho.Field("duration", time.Since(startTime)),
	)
	return &updated, nil
}

func (as *AuthService) cacheUser(user *tables.User, token uint64) {
	if err := fill(&as.guard, as.cache, userKey(user.ID), user, as.cfg.Auth.CacheUserTTL, token); err != nil {
		as.logger.Warn("Failed to cache user", gecho.Field("error", err), gecho.Field("user_id", user.ID))
	}
}

func (as *AuthService) getDummyHash() string {
	as.dummyOnce.Do(func() {
		hash, err := lib.HashPassword("storefront-dummy-password", as.params)
		if err != nil {
			as.logger.Error("Failed to build dummy hash", gecho.Field("error", err))
			return
		}
		as.dummyHash = hash
	})
	return as.dummyHash
}
